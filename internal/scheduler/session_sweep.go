package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes sessions idle for longer than the given duration and
// returns how many it removed.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// SessionSweeper periodically expires idle scan sessions
type SessionSweeper struct {
	sessions Sweeper
	schedule string
	idle     time.Duration

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// NewSessionSweeper creates a sweeper that runs on schedule.
func NewSessionSweeper(sessions Sweeper, schedule string, idle time.Duration) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		schedule: schedule,
		idle:     idle,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the sweep job. The scheduler stops when ctx is done.
func (s *SessionSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.idle <= 0 {
		log.Printf("Session sweeper: disabled (no idle timeout)")
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Session sweeper: started with schedule '%s', idle timeout %v", s.schedule, s.idle)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// RunOnce sweeps immediately.
func (s *SessionSweeper) RunOnce() {
	if n := s.sessions.Sweep(s.idle); n > 0 {
		log.Printf("Session sweeper: expired %d sessions", n)
	}
}

// Stop waits for a running sweep to finish and stops the scheduler.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.isRunning = false

	log.Printf("Session sweeper: stopped")
}

// IsRunning reports whether the sweep job is scheduled.
func (s *SessionSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
