package scheduler

import (
	"context"
	"sync"
	"time"

	assignmentUsecases "mentora/internal/application/assignment/usecases"
	"mentora/internal/shared/logger"
)

// RenewalScheduler runs the assignment renewal sweep on a fixed interval.
// The sweep itself is idempotent (it only acts on rows still matching the
// active+expiring filter), so an overlapping run after a slow sweep or a
// crash-restart double run is harmless.
type RenewalScheduler struct {
	renewUC  *assignmentUsecases.RenewAssignmentsUseCase
	logger   logger.Interface
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	interval time.Duration
}

// NewRenewalScheduler creates a new RenewalScheduler
func NewRenewalScheduler(
	renewUC *assignmentUsecases.RenewAssignmentsUseCase,
	interval time.Duration,
	logger logger.Interface,
) *RenewalScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RenewalScheduler{
		renewUC:  renewUC,
		logger:   logger,
		stopChan: make(chan struct{}),
		interval: interval,
	}
}

// Start starts the scheduler
func (s *RenewalScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting renewal scheduler", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *RenewalScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping renewal scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("renewal scheduler stopped")
	})
}

func (s *RenewalScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup to catch assignments that expired while the
	// worker was down.
	s.runSweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("renewal scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			s.logger.Infow("renewal scheduler stopped")
			return
		case <-ticker.C:
			s.runSweep(ctx)
		}
	}
}

func (s *RenewalScheduler) runSweep(ctx context.Context) {
	s.logger.Debugw("renewal sweep task started")

	startTime := time.Now()

	result, err := s.renewUC.Execute(ctx)
	if err != nil {
		s.logger.Errorw("renewal sweep failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if result.Renewed > 0 || result.Failed > 0 {
		s.logger.Infow("renewal sweep completed",
			"renewed", result.Renewed,
			"failed", result.Failed,
			"duration", time.Since(startTime),
		)
	} else {
		s.logger.Debugw("no assignments due for renewal",
			"duration", time.Since(startTime),
		)
	}
}
