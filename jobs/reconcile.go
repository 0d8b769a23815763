// Package jobs holds background work scheduled by the server process.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinaaaquil/readingbud/backend/service"
)

// Sweeper is the part of service.Reconciler the job needs.
type Sweeper interface {
	Sweep(ctx context.Context) (*service.Report, error)
}

// ReconcileJob runs a reference repair sweep on a fixed interval.
type ReconcileJob struct {
	sweeper  Sweeper
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewReconcileJob(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *ReconcileJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReconcileJob{
		sweeper:  sweeper,
		interval: interval,
		timeout:  2 * time.Minute,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the loop. The first sweep runs after one interval.
func (j *ReconcileJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		return
	}
	j.running = true
	j.wg.Add(1)
	go j.run()
	j.logger.Info("reconcile job started", "interval", j.interval)
}

// Stop ends the loop and waits for an in-flight sweep. A stopped job cannot be restarted.
func (j *ReconcileJob) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	j.logger.Info("reconcile job stopped")
}

func (j *ReconcileJob) run() {
	defer j.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.stopCh:
			return
		}
	}
}

// RunOnce performs a single sweep and logs its outcome.
func (j *ReconcileJob) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.logger.Error("reconcile sweep failed", "error", err)
		return
	}
	j.logger.Debug("reconcile sweep finished", "changes", report.Changes())
}

func (j *ReconcileJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
