package session

import (
	"context"
	"errors"
	"time"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
	"github.com/koydo-hub/koydo-experience-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// PERIODIC RECONCILIATION SWEEP
// ══════════════════════════════════════════════════════════════════════════════

// DefaultSweepInterval is the period between reconciliation fetches.
const DefaultSweepInterval = 5 * time.Minute

// StartSweep launches a background loop that periodically refetches
// the authoritative snapshot and reconciles the aggregate, healing any
// drift left behind by failed mutation persists.
//
// The sweep stops on its own when the session closes or once the
// ledger declares the feature unavailable. Non-positive intervals fall
// back to DefaultSweepInterval.
func (s *Session) StartSweep(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		retrier := retry.LedgerRetrier()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
			}

			if s.IsUnavailable() {
				return
			}
			if !s.sweepOnce(retrier) {
				return
			}
		}
	}()
}

// sweepOnce performs one fetch-and-reconcile pass.
// Reports whether the sweep should keep running.
func (s *Session) sweepOnce(retrier *retry.Retrier) bool {
	// Reserve the sequence before the fetch so a mutation racing the
	// sweep wins the ordering and its fresher snapshot is not clobbered.
	seq := s.nextSeq()

	var snap *experience.Snapshot
	err := retrier.Do(s.ctx, func(ctx context.Context) error {
		got, err := s.ledger.FetchState(ctx)
		if err != nil {
			if errors.Is(err, experience.ErrUnavailable) {
				return retry.Permanent(err)
			}
			return retry.Retryable(err)
		}
		snap = got
		return nil
	})

	switch {
	case errors.Is(err, experience.ErrUnavailable):
		s.mu.Lock()
		s.applyLocked(experience.SetUnavailableAction{})
		s.mu.Unlock()
		return false
	case err != nil:
		s.logger.Debug("reconciliation sweep failed", "error", err)
		return true
	case snap == nil:
		return true
	}

	s.reconcileAt(seq, *snap)
	return true
}
