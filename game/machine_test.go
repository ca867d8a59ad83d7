package game

import (
	"testing"
)

// MockState is a test double for the State interface.
// It helps us track which methods have been called.
type MockState struct {
	StateID       string
	OnEnterCalled bool
	OnExitCalled  bool
	TimeoutCalled bool
	LastMover     Player
	LastMove      string
}

func (m *MockState) OnEnter() {
	m.OnEnterCalled = true
}

func (m *MockState) OnExit() {
	m.OnExitCalled = true
}

func (m *MockState) GetID() string {
	return m.StateID
}

func (m *MockState) PlayerJoined(player Player) {}

func (m *MockState) PlayerLeft(player Player) {}

func (m *MockState) HandleMove(player Player, line string) {
	m.LastMover = player
	m.LastMove = line
}

func (m *MockState) HandleTimeout() {
	m.TimeoutCalled = true
}

// reset clears the call tracking flags.
func (m *MockState) reset() {
	m.OnEnterCalled = false
	m.OnExitCalled = false
	m.TimeoutCalled = false
}

func TestStateMachine_InitialState(t *testing.T) {
	initialState := &MockState{StateID: "initial"}
	sm := NewBaseStateMachine(initialState)

	if !initialState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}

	if sm.GetCurrentState() != initialState {
		t.Error("GetCurrentState should return the initial state")
	}
}

func TestStateMachine_ChangeState(t *testing.T) {
	initialState := &MockState{StateID: "initial"}
	nextState := &MockState{StateID: "next"}

	sm := NewBaseStateMachine(initialState)
	initialState.reset() // Reset after initialization

	err := sm.ChangeState(nextState)
	if err != nil {
		t.Fatalf("ChangeState should not return an error, but got: %v", err)
	}

	if !initialState.OnExitCalled {
		t.Error("Expected OnExit to be called on the old state")
	}

	if !nextState.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the new state")
	}

	if sm.GetCurrentState() != nextState {
		t.Error("GetCurrentState should return the new state")
	}
}

func TestStateMachine_AddAndUseTransition(t *testing.T) {
	stateA := &MockState{StateID: "A"}
	stateB := &MockState{StateID: "B"}
	stateC := &MockState{StateID: "C"}

	sm := NewBaseStateMachine(stateA)

	// Add a valid transition from A to B
	if err := sm.AddTransition(stateA, stateB, func() bool { return true }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	// Add a blocked transition from B to C
	if err := sm.AddTransition(stateB, stateC, func() bool { return false }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	// --- Test valid transition ---
	stateA.reset()
	if err := sm.ChangeState(stateB); err != nil {
		t.Errorf("Expected transition from A to B to be allowed, but got error: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to be B, but got %s", sm.GetCurrentState().GetID())
	}

	// --- Test blocked transition ---
	stateB.reset()
	if err := sm.ChangeState(stateC); err != ErrTransitionNotAllowed {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if sm.GetCurrentState().GetID() != "B" {
		t.Errorf("Expected current state to remain B after a blocked transition, but got %s", sm.GetCurrentState().GetID())
	}
	if stateB.OnExitCalled {
		t.Error("OnExit should not be called on the current state if transition is blocked")
	}
	if stateC.OnEnterCalled {
		t.Error("OnEnter should not be called on the new state if transition is blocked")
	}
}

// chainingState transitions to its successor from OnEnter, the way the
// ending state hands off to the waiting state.
type chainingState struct {
	MockState
	sm   *BaseStateMachine
	next State
}

func (s *chainingState) OnEnter() {
	s.OnEnterCalled = true
	if s.next != nil {
		s.sm.ChangeState(s.next)
	}
}

func TestStateMachine_TransitionFromOnEnter(t *testing.T) {
	final := &MockState{StateID: "final"}
	sm := NewBaseStateMachine(&MockState{StateID: "initial"})

	chained := &chainingState{MockState: MockState{StateID: "chained"}, sm: sm, next: final}
	if err := sm.ChangeState(chained); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}

	if sm.GetCurrentState() != final {
		t.Errorf("Expected nested transition to land on final, got %s", sm.GetCurrentState().GetID())
	}
	if !chained.OnExitCalled {
		t.Error("Expected OnExit on the intermediate state")
	}
}
