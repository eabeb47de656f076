// Package sweeper evicts participants that stopped heartbeating. Eviction is
// decoupled from request traffic so departure never depends on clients
// announcing it.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/tertulia-im/tertulia/internal/models"
	"github.com/tertulia-im/tertulia/pkg/logger"
	"github.com/tertulia-im/tertulia/pkg/metrics"
)

// LeaveNotice is the text of the status message appended per eviction.
const LeaveNotice = "left the room"

// Directory is the view of the participant directory the sweeper needs.
type Directory interface {
	StaleBefore(ctx context.Context, cutoff time.Time) ([]*models.Participant, error)
	Remove(ctx context.Context, name string) error
}

// Notifier posts the leave notice for an evicted participant.
type Notifier interface {
	PostStatus(ctx context.Context, from, text string) (*models.Message, error)
}

// Sweeper runs the periodic eviction pass. A pass removes every participant
// whose lastSeen is older than now-threshold and appends one leave notice per
// removal; worst-case staleness is threshold+interval.
type Sweeper struct {
	dir       Directory
	notifier  Notifier
	interval  time.Duration
	threshold time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func New(dir Directory, n Notifier, interval, threshold time.Duration) *Sweeper {
	return &Sweeper{dir: dir, notifier: n, interval: interval, threshold: threshold}
}

// Start launches the periodic sweep on its own goroutine. Starting a running
// sweeper is a no-op.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	logger.Infof("sweeper started: interval=%s threshold=%s", s.interval, s.threshold)
}

// Stop halts the periodic sweep and waits for an in-flight pass to finish.
// Stopping a stopped sweeper is a no-op.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	logger.Infof("sweeper stopped")
}

func (s *Sweeper) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.SweepOnce(context.Background())
		}
	}
}

// SweepOnce runs a single eviction pass and returns how many participants it
// removed. Per-participant failures are logged and the pass continues;
// nothing is retried. Tests call this directly instead of waiting on the
// timer.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := time.Now().UTC().Add(-s.threshold)
	stale, err := s.dir.StaleBefore(ctx, cutoff)
	if err != nil {
		logger.Errorf("sweep: listing stale participants: %v", err)
		metrics.SweepErrors.Inc()
		return 0
	}
	removed := 0
	for _, p := range stale {
		if err := s.dir.Remove(ctx, p.Name); err != nil {
			logger.Warnf("sweep: removing %s: %v", p.Name, err)
			metrics.SweepErrors.Inc()
			continue
		}
		removed++
		metrics.ParticipantsEvicted.Inc()
		if _, err := s.notifier.PostStatus(ctx, p.Name, LeaveNotice); err != nil {
			logger.Warnf("sweep: leave notice for %s: %v", p.Name, err)
			metrics.SweepErrors.Inc()
		}
	}
	metrics.Sweeps.Inc()
	if removed > 0 {
		logger.Infof("sweep: evicted %d stale participant(s)", removed)
	}
	return removed
}
