package monitor

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMonitor_Metrics(t *testing.T) {
	// One monitor for the whole binary: metrics live in the default registry.
	m := NewMonitor("wordchain_test")

	m.IncOnlinePlayers()
	m.IncOnlinePlayers()
	m.DecOnlinePlayers()
	if got := testutil.ToFloat64(m.metrics.OnlinePlayers); got != 1 {
		t.Errorf("expected 1 online player, got %v", got)
	}

	m.RoundStarted()
	m.MoveAccepted()
	m.MoveRejected()
	m.TurnTimeout()
	m.RoundEnded(3 * time.Second)

	if got := testutil.ToFloat64(m.metrics.RoundsPlayed); got != 1 {
		t.Errorf("expected 1 round played, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.MovesAccepted); got != 1 {
		t.Errorf("expected 1 accepted move, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.MovesRejected); got != 1 {
		t.Errorf("expected 1 rejected move, got %v", got)
	}
	if got := testutil.ToFloat64(m.metrics.TurnTimeouts); got != 1 {
		t.Errorf("expected 1 turn timeout, got %v", got)
	}
}

func TestMonitor_ActiveRoundsHasOneWriter(t *testing.T) {
	m := &Monitor{metrics: newMetrics("wordchain_gauge_test"), startTime: time.Now()}

	m.SetActiveRounds(2)

	// Round lifecycle events must not move the gauge: the periodic
	// SetActiveRounds sample is its only writer.
	m.RoundStarted()
	m.RoundEnded(time.Second)

	if got := testutil.ToFloat64(m.metrics.ActiveRounds); got != 2 {
		t.Fatalf("active rounds gauge moved to %v", got)
	}
}
