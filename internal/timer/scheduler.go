// Package timer arms one cancellable auto-stop timer per running poll.
//
// Every arming gets a generation number. When a timer fires, the
// scheduler hands the consumer a Ticket; the consumer must Claim it
// (under whatever lock serializes its own stop path) before acting. A
// claim only succeeds for the currently armed generation, so a manual
// stop or a restart that got there first turns the fire into a no-op.
package timer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KiiTuNp/voteapp/pkg/metrics"
)

// Timer is a pending delayed call.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by time.AfterFunc.
var RealClock Clock = realClock{}

// Ticket identifies one arming of a poll's timer.
type Ticket struct {
	PollID string
	RoomID string
	gen    uint64
}

// FireFunc is called from the timer goroutine when an arming elapses.
type FireFunc func(ctx context.Context, t Ticket)

type slot struct {
	t   Timer
	gen uint64
}

type Scheduler struct {
	clock Clock
	log   *slog.Logger
	fire  FireFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // in-flight FireFunc calls

	mu     sync.Mutex
	slots  map[string]*slot // poll id -> armed timer
	gen    uint64
	closed bool
}

func New(clock Clock, log *slog.Logger, fire FireFunc) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		clock:  clock,
		log:    log,
		fire:   fire,
		ctx:    ctx,
		cancel: cancel,
		slots:  map[string]*slot{},
	}
}

// Arm schedules an auto-stop for pollID after d, replacing any timer
// already armed for it (a restart resets the countdown). It returns
// false once the scheduler is closed.
func (s *Scheduler) Arm(pollID, roomID string, d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if old := s.slots[pollID]; old != nil {
		old.t.Stop()
		metrics.TimersArmed.Dec()
	}
	s.gen++
	tk := Ticket{PollID: pollID, RoomID: roomID, gen: s.gen}
	s.slots[pollID] = &slot{gen: tk.gen, t: s.clock.AfterFunc(d, func() { s.onFire(tk) })}
	metrics.TimersArmed.Inc()
	s.log.Debug("timer.armed", "poll", pollID, "room", roomID, "after", d)
	return true
}

// Cancel disarms pollID's timer and reports whether one was armed.
func (s *Scheduler) Cancel(pollID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[pollID]
	if sl == nil {
		return false
	}
	sl.t.Stop()
	delete(s.slots, pollID)
	metrics.TimersArmed.Dec()
	s.log.Debug("timer.cancelled", "poll", pollID)
	return true
}

// Claim releases the slot for a fired ticket. It reports false when the
// ticket is stale: the poll was stopped, restarted or cancelled after
// this arming.
func (s *Scheduler) Claim(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl := s.slots[t.PollID]
	if sl == nil || sl.gen != t.gen {
		return false
	}
	delete(s.slots, t.PollID)
	metrics.TimersArmed.Dec()
	return true
}

// Armed reports whether pollID has a pending timer.
func (s *Scheduler) Armed(pollID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots[pollID] != nil
}

// Len is the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Close stops every timer and waits for running fire callbacks.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, sl := range s.slots {
		sl.t.Stop()
		delete(s.slots, id)
		metrics.TimersArmed.Dec()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) onFire(t Ticket) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	s.log.Debug("timer.fired", "poll", t.PollID, "room", t.RoomID)
	s.fire(s.ctx, t)
}
