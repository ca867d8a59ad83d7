// network/connection.go
package network

import (
	"bufio"
	"net"
	"sync"
	"time"
)

type Connection interface {
	Send(msgID uint16, data []byte) error
	ReadPacket() (*Packet, error)
	Close() error
	RemoteAddr() net.Addr
	SetIdleTimeout(d time.Duration)
}

// TCPConnection carries packets over a raw TCP stream. Reads are buffered and
// whole-frame: partial TCP reads and writes are hidden from callers.
type TCPConnection struct {
	conn      net.Conn
	reader    *bufio.Reader
	sendMutex sync.Mutex
	idle      time.Duration
	maxFrame  uint32
}

func NewTCPConnection(conn net.Conn, maxFrame uint32) *TCPConnection {
	if maxFrame == 0 {
		maxFrame = DefaultMaxFrameSize
	}
	return &TCPConnection{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		maxFrame: maxFrame,
	}
}

func (c *TCPConnection) Send(msgID uint16, data []byte) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	_, err := c.conn.Write(EncodePacket(msgID, data))
	return err
}

// ReadPacket blocks until one whole frame has arrived or the peer closes.
func (c *TCPConnection) ReadPacket() (*Packet, error) {
	if c.idle > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.idle))
	}
	return ReadPacketFrom(c.reader, c.maxFrame)
}

func (c *TCPConnection) SetIdleTimeout(d time.Duration) {
	c.idle = d
}

func (c *TCPConnection) Close() error {
	return c.conn.Close()
}

func (c *TCPConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
