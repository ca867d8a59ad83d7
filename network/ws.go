package network

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConnection carries the same frames over a WebSocket, one frame per
// binary message. WebSocket messages are already delimited, but keeping the
// length prefix means both transports share one codec.
type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	idle      time.Duration
	maxFrame  uint32
}

func NewWSConnection(conn *websocket.Conn, maxFrame uint32) *WSConnection {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &WSConnection{conn: conn, maxFrame: maxFrame}
}

func (c *WSConnection) Send(msgID uint16, data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	return c.conn.WriteMessage(websocket.BinaryMessage, EncodePacket(msgID, data))
}

func (c *WSConnection) ReadPacket() (*Packet, error) {
	if c.idle > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.idle))
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	if uint32(len(data)) > c.maxFrame+lengthPrefixSize {
		return nil, ErrMalformedFrame
	}
	return DecodePacket(data)
}

func (c *WSConnection) SetIdleTimeout(d time.Duration) {
	c.idle = d
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
