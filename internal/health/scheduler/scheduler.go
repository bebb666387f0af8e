package scheduler

import (
	"context"
	"log"
	"time"
)

// BatchRunner is the orchestrator operation the scheduler triggers
type BatchRunner interface {
	RunAll(ctx context.Context) error
}

// DailyScheduler triggers the all-customers health calculation once per day
// at a configured hour.
type DailyScheduler struct {
	runner   BatchRunner
	hour     int
	stopChan chan struct{}
	now      func() time.Time
}

// NewDailyScheduler creates a scheduler firing daily at hour (0-23)
func NewDailyScheduler(runner BatchRunner, hour int) *DailyScheduler {
	if hour < 0 || hour > 23 {
		hour = 2
	}
	return &DailyScheduler{
		runner:   runner,
		hour:     hour,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the scheduler loop
func (s *DailyScheduler) Start() {
	log.Printf("[Scheduler] daily health score calculation scheduled at %02d:00", s.hour)

	go func() {
		for {
			next := s.NextRun(s.now())
			timer := time.NewTimer(next.Sub(s.now()))

			select {
			case <-timer.C:
				log.Println("[Scheduler] starting scheduled health score calculation")
				if err := s.runner.RunAll(context.Background()); err != nil {
					log.Printf("[Scheduler] scheduled calculation failed: %v", err)
				}
			case <-s.stopChan:
				timer.Stop()
				log.Println("[Scheduler] stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *DailyScheduler) Stop() {
	close(s.stopChan)
}

// NextRun returns the next occurrence of the configured hour after now
func (s *DailyScheduler) NextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
