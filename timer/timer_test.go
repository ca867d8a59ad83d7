package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_OneShot(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule(20*time.Millisecond, 0, func() {
		fired.Add(1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fired.Load() != 1 {
		t.Fatalf("expected the job to fire once, fired %d times", fired.Load())
	}

	// One-shot jobs must not repeat.
	time.Sleep(100 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatalf("one-shot job fired %d times", fired.Load())
	}
}

func TestScheduler_Repeating(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired atomic.Int32
	s.Schedule(10*time.Millisecond, 20*time.Millisecond, func() {
		fired.Add(1)
	})

	deadline := time.Now().Add(2 * time.Second)
	for fired.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fired.Load() < 3 {
		t.Fatalf("expected a repeating job to fire at least 3 times, got %d", fired.Load())
	}
}

func TestScheduler_Cancel(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired atomic.Int32
	id := s.Schedule(100*time.Millisecond, 0, func() {
		fired.Add(1)
	})
	s.Cancel(id)

	time.Sleep(250 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("canceled job fired %d times", fired.Load())
	}
}

func TestScheduler_StopPreventsFiring(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)

	var fired atomic.Int32
	s.Schedule(100*time.Millisecond, 0, func() {
		fired.Add(1)
	})
	s.Stop()

	time.Sleep(250 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("job fired %d times after Stop", fired.Load())
	}
}
