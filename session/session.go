// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/wordchain/network"
)

// Session is one connected client. A session lives from accept to disconnect
// and belongs to at most one room at a time.
type Session struct {
	ID        string
	Conn      network.Connection
	CreatedAt time.Time

	name       string
	roomID     int // 0 while at the room menu
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

func (s *Session) SetName(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.name = name
}

func (s *Session) Name() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.name
}

func (s *Session) SetRoomID(id int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.roomID = id
}

func (s *Session) RoomID() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomID
}

// Touch records inbound activity, for the idle sweep.
func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastActive = time.Now()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Session管理器：进程内打开的连接集合
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

func (m *Manager) GetByName(name string) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if session.Name() == name {
			result = append(result, session)
		}
	}
	return result
}

// IDs returns the IDs of all open sessions.
func (m *Manager) IDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// IdleSince returns sessions with no inbound activity for at least d that are
// not seated in a room.
func (m *Manager) IdleSince(d time.Duration) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	cutoff := time.Now().Add(-d)
	var result []*Session
	for _, session := range m.sessions {
		if session.RoomID() == 0 && session.LastActive().Before(cutoff) {
			result = append(result, session)
		}
	}
	return result
}
