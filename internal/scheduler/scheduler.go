package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher reloads the forecast for the remembered location.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler periodically refreshes the session forecast.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Refresher
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(target Refresher, interval, timeout time.Duration, tz *time.Location) *Scheduler {
	if tz == nil {
		tz = time.UTC
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(tz),
		target:    target,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: refresh interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().WaitForSchedule().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Printf("scheduler: refreshing forecast every %s", s.interval)
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running forecast refresh job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.target.Refresh(ctx); err != nil {
		log.Printf("scheduler: refresh failed: %v", err)
		return
	}
	log.Println("scheduler: completed forecast refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
