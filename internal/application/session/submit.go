package session

import (
	"context"
	"sync"
	"time"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

// ══════════════════════════════════════════════════════════════════════════════
// GAME RESULT SUBMISSION
// ══════════════════════════════════════════════════════════════════════════════

// User-facing messages. Submission is the only place in the subsystem
// where a failure surfaces to the learner; everything else degrades
// silently.
const (
	msgAlreadySubmitting = "Already submitting."
	msgNetworkError      = "Network error. Your score has been saved locally."
)

// SubmissionAdapter submits finished games to the ledger and feeds the
// confirmed awards back into the session. At most one submission is in
// flight at a time; a second call while one is pending returns the last
// completed outcome without touching the network.
type SubmissionAdapter struct {
	session *Session

	mu          sync.Mutex
	inFlight    bool
	lastOutcome *experience.GameResultOutcome
}

// NewSubmissionAdapter creates an adapter bound to the session.
func NewSubmissionAdapter(s *Session) *SubmissionAdapter {
	return &SubmissionAdapter{session: s}
}

// Submit sends the game result and returns the ledger's verdict.
//
// The returned outcome always carries either the confirmed awards or a
// user-facing message in Error; Submit itself never fails. When the
// session is marked unavailable the call degrades to a zero outcome so
// games stay playable without the experience backend.
func (a *SubmissionAdapter) Submit(ctx context.Context, in experience.GameResultInput) experience.GameResultOutcome {
	a.mu.Lock()
	if a.inFlight {
		// A duplicate call gets the last completed outcome; the
		// synthetic error only covers the very first submission.
		if a.lastOutcome != nil {
			out := *a.lastOutcome
			a.mu.Unlock()
			return out
		}
		a.mu.Unlock()
		return experience.GameResultOutcome{Error: msgAlreadySubmitting}
	}
	a.inFlight = true
	a.mu.Unlock()

	outcome := a.submit(ctx, in)

	a.mu.Lock()
	a.inFlight = false
	a.lastOutcome = &outcome
	a.mu.Unlock()

	return outcome
}

func (a *SubmissionAdapter) submit(ctx context.Context, in experience.GameResultInput) experience.GameResultOutcome {
	if a.session.IsUnavailable() {
		return experience.GameResultOutcome{}
	}

	outcome, err := a.session.ledger.SubmitGameResult(ctx, in)
	if err != nil {
		a.session.logger.Warn("game result submission failed", "game", in.GameType, "error", err)
		return experience.GameResultOutcome{Error: msgNetworkError}
	}
	if outcome.Error != "" {
		return outcome
	}

	// The ledger confirmed the awards; replay them into the aggregate
	// so the HUD updates without waiting for the next hydration.
	if outcome.PointsAwarded > 0 {
		a.session.AwardXP(outcome.PointsAwarded, "game:"+in.GameType)
	}
	if outcome.BadgeEarned != "" {
		a.session.AwardBadge(experience.BadgeEntry{
			ID:       outcome.BadgeEarned,
			Label:    experience.HumanizeBadgeID(outcome.BadgeEarned),
			EarnedAt: time.Now().UTC(),
		})
	}

	return outcome
}

// IsSubmitting reports whether a submission is currently in flight.
func (a *SubmissionAdapter) IsSubmitting() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// LastResult returns a copy of the most recent completed outcome, or nil.
func (a *SubmissionAdapter) LastResult() *experience.GameResultOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastOutcome == nil {
		return nil
	}
	out := *a.lastOutcome
	return &out
}
