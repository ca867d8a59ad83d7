package room

import "time"

// Broadcaster defines the interface for broadcasting messages to a room.
// This is defined here to break the import cycle between room and broadcast.
type Broadcaster interface {
	BroadcastToRoom(roomID int, msgID uint16, data []byte, exceptSessionIDs ...string) error
}

// Recorder receives game metrics. A nil Recorder disables recording.
type Recorder interface {
	RoundStarted()
	RoundEnded(duration time.Duration)
	MoveAccepted()
	MoveRejected()
	TurnTimeout()
}

// Stats receives per-player results. A nil Stats disables tallying.
type Stats interface {
	RecordWord(name string)
	RecordResult(winner, loser string)
}
