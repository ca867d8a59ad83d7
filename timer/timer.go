// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// Job is one scheduled callback, optionally repeating.
type Job struct {
	ID       int64
	RunAt    time.Time
	Interval time.Duration
	Callback func()
	index    int
}

type jobQueue []*Job

func (q jobQueue) Len() int { return len(q) }

func (q jobQueue) Less(i, j int) bool {
	return q[i].RunAt.Before(q[j].RunAt)
}

func (q jobQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *jobQueue) Push(x interface{}) {
	n := len(*q)
	job := x.(*Job)
	job.index = n
	*q = append(*q, job)
}

func (q *jobQueue) Pop() interface{} {
	old := *q
	n := len(old)
	job := old[n-1]
	job.index = -1
	*q = old[0 : n-1]
	return job
}

// Scheduler runs background jobs off a single heap: metrics sampling, idle
// sweeps and other housekeeping that does not belong on a room's loop.
type Scheduler struct {
	queue      jobQueue
	mutex      sync.Mutex
	nextID     int64
	resolution time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewScheduler(resolution time.Duration) *Scheduler {
	if resolution <= 0 {
		resolution = 100 * time.Millisecond
	}
	s := &Scheduler{
		queue:      make(jobQueue, 0),
		nextID:     1,
		resolution: resolution,
		stopChan:   make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// Schedule registers a callback after delay; a positive interval makes it
// repeat. Callbacks run on their own goroutine.
func (s *Scheduler) Schedule(delay, interval time.Duration, callback func()) int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job := &Job{
		ID:       s.nextID,
		RunAt:    time.Now().Add(delay),
		Interval: interval,
		Callback: callback,
	}
	s.nextID++

	heap.Push(&s.queue, job)
	return job.ID
}

// Cancel removes a pending job.
func (s *Scheduler) Cancel(jobID int64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, job := range s.queue {
		if job.ID == jobID {
			heap.Remove(&s.queue, i)
			break
		}
	}
}

// Stop halts the scheduler; pending jobs never fire.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runDue()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) runDue() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	for s.queue.Len() > 0 {
		job := s.queue[0]
		if job.RunAt.After(now) {
			break
		}

		heap.Pop(&s.queue)
		go job.Callback()

		if job.Interval > 0 {
			job.RunAt = now.Add(job.Interval)
			heap.Push(&s.queue, job)
		}
	}
}
