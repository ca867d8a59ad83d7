// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/wordchain/room"
	"github.com/wfunc/wordchain/session"
)

var (
	ErrRoomNotFound = errors.New("room not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID int, msgID uint16, data []byte, exceptSessionIDs ...string) error
	BroadcastToAll(msgID uint16, data []byte) error
}

// 基于房间的广播器
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(roomManager *room.Manager, sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		roomManager:    roomManager,
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom sends a message to every seated player of one room, minus
// the excluded sessions (the mover does not re-receive their own move).
func (b *RoomBroadcaster) BroadcastToRoom(roomID int, msgID uint16, data []byte, exceptSessionIDs ...string) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	// Get a thread-safe copy of the sessions
	sessions := r.Sessions()

	for _, s := range sessions {
		if excluded(s.ID, exceptSessionIDs) {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			// 发送失败只影响这一个连接，由它的handler负责善后
			continue
		}
	}

	return nil
}

// BroadcastToAll sends a message to every open connection.
func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, id := range b.sessionManager.IDs() {
		if s, ok := b.sessionManager.Get(id); ok {
			if err := s.Send(msgID, data); err != nil {
				continue
			}
		}
	}
	return nil
}

func excluded(id string, except []string) bool {
	for _, e := range except {
		if e == id {
			return true
		}
	}
	return false
}
