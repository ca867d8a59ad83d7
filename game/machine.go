package game

import (
	"errors"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// State is one phase of a room's round cycle. Handlers are invoked by the
// room's own goroutine for every event it dequeues.
type State interface {
	OnEnter()
	OnExit()
	GetID() string
	PlayerJoined(player Player)
	PlayerLeft(player Player)
	HandleMove(player Player, line string)
	HandleTimeout()
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

// BaseStateMachine drives a room's states. It is not safe for concurrent
// use: each room owns one machine and drives it from a single goroutine,
// which also makes transitions triggered from OnEnter well defined.
type BaseStateMachine struct {
	currentState State
	transitions  map[string]map[string]func() bool // fromState -> toState -> condition
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		currentState: initialState,
		transitions:  make(map[string]map[string]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	currentID := sm.currentState.GetID()
	newID := newState.GetID()

	// 检查是否有转换条件
	if conditions, exists := sm.transitions[currentID]; exists {
		if condition, exists := conditions[newID]; exists {
			if condition != nil && !condition() {
				return ErrTransitionNotAllowed
			}
		}
	}

	sm.currentState.OnExit()
	sm.currentState = newState
	sm.currentState.OnEnter()

	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	return sm.currentState
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	fromID := from.GetID()
	toID := to.GetID()

	if _, exists := sm.transitions[fromID]; !exists {
		sm.transitions[fromID] = make(map[string]func() bool)
	}

	sm.transitions[fromID][toID] = condition
	return nil
}

// 房间状态基础结构
type RoomStateBase struct {
	ID   string
	Room RoomContext
}

func (s *RoomStateBase) GetID() string {
	return s.ID
}

func (s *RoomStateBase) OnEnter() {
	// 默认实现
}

func (s *RoomStateBase) OnExit() {
	// 默认实现
}

func (s *RoomStateBase) PlayerJoined(player Player) {
	// 默认实现
}

func (s *RoomStateBase) PlayerLeft(player Player) {
	// 默认实现
}

func (s *RoomStateBase) HandleMove(player Player, line string) {
	// 默认实现，具体状态可以覆盖此方法
}

func (s *RoomStateBase) HandleTimeout() {
	// 默认实现
}

// NewWaitingState creates a new waiting state.
func NewWaitingState(room RoomContext) *WaitingState {
	return &WaitingState{
		RoomStateBase: RoomStateBase{
			ID:   StateWaiting,
			Room: room,
		},
	}
}

// WaitingState 等待状态：凑满两名玩家后立即开局
type WaitingState struct {
	RoomStateBase
}

func (s *WaitingState) PlayerJoined(player Player) {
	if len(s.Room.Seats()) >= s.Room.Capacity() {
		s.Room.ChangeState(NewPlayingState(s.Room))
	}
}

// PlayerLeft frees the seat of a player who dropped before the round began.
func (s *WaitingState) PlayerLeft(player Player) {
	s.Room.ReleaseSeat(player, VerdictDisconnect)
}

// HandleMove lets a lone player quit or switch rooms before a round starts;
// anything else is told to wait.
func (s *WaitingState) HandleMove(player Player, line string) {
	cmd, _ := ParseInput(line)
	switch cmd {
	case CommandExit:
		s.Room.ReleaseSeat(player, VerdictDisconnect)
	case CommandChange:
		s.Room.ReleaseSeat(player, VerdictToSelection)
	default:
		s.Room.Reject(player, "waiting for a second player")
	}
}
