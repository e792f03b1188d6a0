package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/standby/internal/domain"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// GocronScheduler hands out tickers backed by gocron interval jobs
type GocronScheduler struct {
	logger *zap.Logger
	s      *gocron.Scheduler
}

// NewGocronScheduler creates and starts the underlying gocron scheduler
func NewGocronScheduler(logger *zap.Logger) (*GocronScheduler, error) {
	s := gocron.NewScheduler(time.Local)
	s.StartAsync()

	return &GocronScheduler{logger: logger, s: s}, nil
}

// NewTicker schedules a job that delivers the current time every interval.
// Ticks are dropped, never queued, while the receiver is busy.
func (g *GocronScheduler) NewTicker(interval time.Duration) (domain.Ticker, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid tick interval: %v", interval)
	}

	t := &gocronTicker{
		s: g.s,
		c: make(chan time.Time, 1),
	}

	job, err := g.s.Every(interval).WaitForSchedule().SingletonMode().Do(t.fire)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule ticker: %w", err)
	}
	t.job = job

	g.logger.Debug("Ticker scheduled", zap.Duration("interval", interval))
	return t, nil
}

// Shutdown stops every job and the scheduler itself
func (g *GocronScheduler) Shutdown() error {
	g.s.Stop()
	return nil
}

type gocronTicker struct {
	s   *gocron.Scheduler
	job *gocron.Job
	c   chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (t *gocronTicker) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}

	select {
	case t.c <- time.Now():
	default:
	}
}

func (t *gocronTicker) C() <-chan time.Time {
	return t.c
}

// Stop removes the job. No tick is delivered after Stop returns.
func (t *gocronTicker) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.s.RemoveByReference(t.job)
	return nil
}

// SystemClock reads the local wall clock
type SystemClock struct{}

// NewSystemClock returns the real clock
func NewSystemClock() SystemClock {
	return SystemClock{}
}

func (SystemClock) Now() time.Time {
	return time.Now()
}
