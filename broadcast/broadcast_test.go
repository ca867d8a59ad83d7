package broadcast

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/wfunc/wordchain/logger"
	"github.com/wfunc/wordchain/models"
	"github.com/wfunc/wordchain/network"
	"github.com/wfunc/wordchain/room"
	"github.com/wfunc/wordchain/session"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type sentPacket struct {
	MsgID uint16
	Data  []byte
}

// MockConnection records everything sent to it.
type MockConnection struct {
	packets chan sentPacket
}

func newMockConnection() *MockConnection {
	return &MockConnection{packets: make(chan sentPacket, 64)}
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.packets <- sentPacket{MsgID: msgID, Data: data}
	return nil
}

func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetIdleTimeout(d time.Duration)       {}

func waitText(t *testing.T, conn *MockConnection) string {
	t.Helper()
	select {
	case pkt := <-conn.packets:
		var note models.Notification
		json.Unmarshal(pkt.Data, &note)
		return note.Text
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a packet")
		return ""
	}
}

func TestRoomBroadcaster(t *testing.T) {
	roomManager := room.NewRoomManager()
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(roomManager, sessionManager)
	roomManager.CreatePool(1, 2, time.Minute, b, nil, nil)
	defer roomManager.CloseAll()

	annConn := newMockConnection()
	ann := session.NewSession("sess-ann", annConn)
	bobConn := newMockConnection()
	bob := session.NewSession("sess-bob", bobConn)
	sessionManager.Add(ann)
	sessionManager.Add(bob)

	r, _ := roomManager.GetRoom(1)
	if _, err := r.Join(ann, "ann"); err != nil {
		t.Fatalf("ann failed to join: %v", err)
	}
	if _, err := r.Join(bob, "bob"); err != nil {
		t.Fatalf("bob failed to join: %v", err)
	}

	// The round-start notification flows through the broadcaster to both.
	if text := waitText(t, annConn); !strings.Contains(text, "round started") {
		t.Errorf("ann got %q", text)
	}
	if text := waitText(t, bobConn); !strings.Contains(text, "round started") {
		t.Errorf("bob got %q", text)
	}

	// Exclusion: a message excluding ann reaches only bob.
	data, _ := json.Marshal(models.Notification{Text: "only for bob"})
	if err := b.BroadcastToRoom(1, network.MsgTypeNotification, data, ann.ID); err != nil {
		t.Fatalf("BroadcastToRoom failed: %v", err)
	}
	if text := waitText(t, bobConn); text != "only for bob" {
		t.Errorf("bob got %q", text)
	}
	select {
	case pkt := <-annConn.packets:
		t.Errorf("ann should have been excluded, got message %d", pkt.MsgID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoomBroadcaster_UnknownRoom(t *testing.T) {
	b := NewRoomBroadcaster(room.NewRoomManager(), session.NewManager())

	err := b.BroadcastToRoom(9, network.MsgTypeNotification, nil)
	if err != ErrRoomNotFound {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRoomBroadcaster_BroadcastToAll(t *testing.T) {
	roomManager := room.NewRoomManager()
	sessionManager := session.NewManager()
	b := NewRoomBroadcaster(roomManager, sessionManager)

	annConn := newMockConnection()
	sessionManager.Add(session.NewSession("sess-ann", annConn))
	bobConn := newMockConnection()
	sessionManager.Add(session.NewSession("sess-bob", bobConn))

	data, _ := json.Marshal(models.Notification{Text: "server closing"})
	if err := b.BroadcastToAll(network.MsgTypeNotification, data); err != nil {
		t.Fatalf("BroadcastToAll failed: %v", err)
	}

	if text := waitText(t, annConn); text != "server closing" {
		t.Errorf("ann got %q", text)
	}
	if text := waitText(t, bobConn); text != "server closing" {
		t.Errorf("bob got %q", text)
	}
}
