package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/wfunc/wordchain/models"
	"github.com/wfunc/wordchain/network"
)

func main() {
	addr := flag.String("addr", "localhost:9000", "server address")
	flag.Parse()

	log.Printf("Connecting to %s", *addr)
	raw, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	conn := network.NewTCPConnection(raw, network.DefaultMaxFrameSize)
	defer conn.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			packet, err := conn.ReadPacket()
			if err != nil {
				return
			}
			render(packet)
		}
	}()

	// Write loop: every line is a move; /exit ends the session.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			data, _ := json.Marshal(models.Move{Word: line})
			if err := conn.Send(network.MsgTypeMove, data); err != nil {
				log.Printf("Write error: %v", err)
				return
			}
			if line == "/exit" {
				conn.Close()
				return
			}
		}
	}()

	<-done
	log.Println("Connection closed.")
}

func render(packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeRoomList:
		var list models.RoomList
		if err := json.Unmarshal(packet.Data, &list); err != nil {
			return
		}
		fmt.Println("/exit - to quit")
		for _, summary := range list.Rooms {
			fmt.Println(summary)
		}
	case network.MsgTypeRejection:
		var rejection models.Rejection
		if err := json.Unmarshal(packet.Data, &rejection); err != nil {
			return
		}
		fmt.Println("invalid move:", rejection.Reason)
	default:
		var note models.Notification
		if err := json.Unmarshal(packet.Data, &note); err != nil {
			return
		}
		fmt.Println(note.Text)
	}
}
