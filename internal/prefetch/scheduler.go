// file: internal/prefetch/scheduler.go
// version: 2.0.0
// guid: 3b4c5d6e-7f8a-9b0c-1d2e-3f4a5b6c7d8e

package prefetch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/news"
)

// MinInterval is the shortest allowed gap between scheduled runs.
const MinInterval = time.Minute

// SchedulerConfig holds the runtime config for the prefetch scheduler.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
	Jobs     []Job
}

// Scheduler periodically re-runs a prefetch.
type Scheduler struct {
	fetcher Fetcher
	opts    Options
	config  func() SchedulerConfig

	ticker  *time.Ticker
	stopCh  chan struct{}
	stopped chan struct{}
	cancel  context.CancelFunc
	once    sync.Once

	mu   sync.Mutex
	last *Report
}

// NewScheduler creates a scheduler that reads config dynamically via the getter.
func NewScheduler(fetcher Fetcher, opts Options, configGetter func() SchedulerConfig) *Scheduler {
	return &Scheduler{
		fetcher: fetcher,
		opts:    opts,
		config:  configGetter,
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the periodic loop in a goroutine. It returns false when the
// scheduler is disabled.
func (s *Scheduler) Start() bool {
	cfg := s.config()
	if !cfg.Enabled {
		log.Printf("[INFO] Prefetch scheduler disabled")
		close(s.stopped)
		return false
	}

	interval := max(cfg.Interval, MinInterval)
	s.ticker = time.NewTicker(interval)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	log.Printf("[INFO] Prefetch scheduler started: %d feeds every %v", len(cfg.Jobs), interval)
	go s.loop(ctx)
	return true
}

// Stop halts the scheduler and waits for a run in progress to notice.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		if s.cancel != nil {
			s.cancel()
		}
		close(s.stopCh)
		<-s.stopped
		log.Printf("[INFO] Prefetch scheduler stopped")
	})
}

// LastReport returns the most recent run's report, if any.
func (s *Scheduler) LastReport() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.stopped)
	s.tick(ctx)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	cfg := s.config()
	if !cfg.Enabled || len(cfg.Jobs) == 0 {
		return
	}

	report := Run(ctx, s.fetcher, cfg.Jobs, s.opts)
	if report.Canceled {
		return
	}
	log.Printf("[INFO] Prefetch: %d live, %d cache, %d fallback, %d none, %d mirrored",
		report.ByOrigin[news.OriginLive], report.ByOrigin[news.OriginCache], report.ByOrigin[news.OriginFallback], report.ByOrigin[news.OriginNone], report.Mirrored)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
}
