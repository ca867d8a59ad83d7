package game

import (
	"fmt"
	"time"

	"github.com/wfunc/wordchain/logger"
)

// State IDs for the round cycle.
const (
	StateWaiting = "waiting"
	StatePlaying = "playing"
	StateEnding  = "ending"
)

// PlayingState 游戏进行状态：轮流提交词，超时即判负
type PlayingState struct {
	RoomStateBase
	words     []string
	turnIndex int
	started   time.Time
}

// NewPlayingState 创建新的对局状态
func NewPlayingState(room RoomContext) *PlayingState {
	return &PlayingState{
		RoomStateBase: RoomStateBase{
			ID:   StatePlaying,
			Room: room,
		},
	}
}

// OnEnter 进入对局：清空词链，座位0先手
func (s *PlayingState) OnEnter() {
	s.words = nil
	s.turnIndex = 0
	s.started = time.Now()

	seats := s.Room.Seats()
	logger.Log.Infof("round started in room %d: %s vs %s",
		s.Room.ID(), seats[0].GetName(), seats[1].GetName())

	s.Room.RecordRoundStarted()
	s.Room.Notify(fmt.Sprintf("round started in room %d, first turn: %s",
		s.Room.ID(), seats[0].GetName()))
	s.Room.ArmTurnTimer()
}

// Words returns the accepted chain so far, oldest first.
func (s *PlayingState) Words() []string {
	return s.words
}

// HandleMove processes one submitted line from a seated player.
func (s *PlayingState) HandleMove(player Player, line string) {
	cmd, word := ParseInput(line)

	switch cmd {
	case CommandExit:
		s.forfeit(player, VerdictDisconnect)
		return
	case CommandChange:
		s.forfeit(player, VerdictToSelection)
		return
	}

	holder := s.currentHolder()
	if holder == nil || player.GetID() != holder.GetID() {
		s.Room.Reject(player, "not your turn")
		return
	}

	if err := CheckWord(s.words, word); err != nil {
		// Same player keeps the turn; the clock restarts for the retry.
		s.Room.Reject(player, err.Error())
		s.Room.ArmTurnTimer()
		return
	}

	s.words = append(s.words, word)
	s.Room.RecordMove(player)
	s.Room.Notify(fmt.Sprintf("%s : %s", player.GetName(), word), player)
	s.turnIndex = 1 - s.turnIndex
	s.Room.ArmTurnTimer()
}

// HandleTimeout fires when the turn holder ran out the clock.
func (s *PlayingState) HandleTimeout() {
	holder := s.currentHolder()
	if holder == nil {
		return
	}
	logger.Log.Infof("room %d: %s timed out", s.Room.ID(), holder.GetName())
	s.Room.RecordTimeout()
	s.forfeit(holder, VerdictToSelection)
}

// PlayerLeft handles a mid-round disconnect: the leaver forfeits.
func (s *PlayingState) PlayerLeft(player Player) {
	s.forfeit(player, VerdictDisconnect)
}

func (s *PlayingState) currentHolder() Player {
	seats := s.Room.Seats()
	if s.turnIndex >= len(seats) {
		return nil
	}
	return seats[s.turnIndex]
}

// forfeit ends the round: loser is announced, both seats are released. The
// round cannot continue with one player, so the opponent goes back to room
// selection regardless of who forfeited.
func (s *PlayingState) forfeit(loser Player, loserVerdict Verdict) {
	s.Room.StopTurnTimer()
	s.Room.ChangeState(NewEndingState(s.Room, loser, loserVerdict, s.started))
}

// EndingState 结算状态：广播败者并清空座位，随即回到等待状态
type EndingState struct {
	RoomStateBase
	loser        Player
	loserVerdict Verdict
	started      time.Time
}

func NewEndingState(room RoomContext, loser Player, loserVerdict Verdict, started time.Time) *EndingState {
	return &EndingState{
		RoomStateBase: RoomStateBase{
			ID:   StateEnding,
			Room: room,
		},
		loser:        loser,
		loserVerdict: loserVerdict,
		started:      started,
	}
}

func (s *EndingState) OnEnter() {
	seats := s.Room.Seats()

	var winner Player
	for _, p := range seats {
		if p.GetID() != s.loser.GetID() {
			winner = p
		}
	}

	s.Room.Notify(fmt.Sprintf("player %s lost the round", s.loser.GetName()))
	s.Room.RecordRoundEnded(winner, s.loser, s.started)

	for _, p := range seats {
		verdict := VerdictToSelection
		if p.GetID() == s.loser.GetID() {
			verdict = s.loserVerdict
		}
		s.Room.ReleaseSeat(p, verdict)
	}

	s.Room.ChangeState(NewWaitingState(s.Room))
}
