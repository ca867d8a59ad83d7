// game/interfaces.go
package game

import "time"

// Verdict is how a seat is handed back to the directory when a round ends.
type Verdict int

const (
	// VerdictToSelection returns the player to the room-selection menu.
	VerdictToSelection Verdict = iota
	// VerdictDisconnect drops the player from the server entirely.
	VerdictDisconnect
)

// Player defines the minimal interface for a seated participant that a state
// needs to interact with.
type Player interface {
	GetID() string
	GetName() string
}

// RoomContext defines the interface that a Room must implement to be driven
// by the state machine. This breaks the import cycle between room and game.
// All methods are called from the room's own goroutine.
type RoomContext interface {
	ID() int
	Capacity() int
	Seats() []Player
	ChangeState(newState State) error

	// Notify broadcasts a text message to every seat except the given ones.
	Notify(text string, except ...Player)
	// Reject sends an invalid-move reason to one player and counts the
	// rejection. The submitter keeps the turn.
	Reject(player Player, reason string)

	ArmTurnTimer()
	StopTurnTimer()
	// ReleaseSeat removes a player from the room and delivers the verdict to
	// the connection handler waiting on the seat.
	ReleaseSeat(player Player, verdict Verdict)

	RecordRoundStarted()
	RecordMove(player Player)
	RecordTimeout()
	RecordRoundEnded(winner, loser Player, started time.Time)
}
