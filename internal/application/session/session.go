// Package session contains the application layer of the experience
// subsystem: a long-lived Session that owns the in-memory aggregate,
// drives hydration and optimistic mutations, and reconciles with the
// remote ledger in the background.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER PORT
// ══════════════════════════════════════════════════════════════════════════════

// Ledger is the outbound port to the remote experience ledger.
// The infrastructure layer provides the HTTP implementation.
type Ledger interface {
	// FetchState loads the authoritative aggregate snapshot.
	// Returns (nil, nil) when the student has no prior state.
	FetchState(ctx context.Context) (*experience.Snapshot, error)

	// SubmitEvent persists a mutation and returns the authoritative
	// snapshot from the response, or nil when the response carries none.
	SubmitEvent(ctx context.Context, ev experience.LedgerEvent) (*experience.Snapshot, error)

	// SubmitGameResult submits a completed game for evaluation.
	SubmitGameResult(ctx context.Context, in experience.GameResultInput) (experience.GameResultOutcome, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Config holds Session dependencies.
type Config struct {
	// Ledger is the remote ledger port (required).
	Ledger Ledger

	// Logger for background persistence failures.
	// Defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// Session owns one student's experience aggregate for the lifetime of
// an app run. All reads return copies; all writes go through the
// reducer under the session mutex.
//
// Mutations are optimistic: local state updates immediately and the
// ledger write happens on a background goroutine. A failed write is
// never rolled back and never retried; the periodic sweep or the next
// successful mutation realigns the aggregate.
type Session struct {
	ledger Ledger
	logger *slog.Logger

	mu    sync.Mutex
	state experience.State
	queue rewardQueue

	// seq numbers every outbound mutation; lastReconcileSeq is the
	// highest sequence whose server snapshot has been applied. A
	// response arriving out of order with a lower sequence is dropped
	// instead of overwriting fresher server data.
	seq              uint64
	lastReconcileSeq uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a session in the initial loading state.
// Call Hydrate before issuing mutations and Close when done.
func NewSession(config Config) *Session {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		ledger: config.Ledger,
		logger: logger,
		state:  experience.NewState(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Close cancels background work and waits for in-flight persists.
// The session must not be used after Close.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}

// ══════════════════════════════════════════════════════════════════════════════
// HYDRATION
// ══════════════════════════════════════════════════════════════════════════════

// Hydrate loads the authoritative state from the ledger and seeds the
// aggregate. Exactly three outcomes are possible:
//
//   - the ledger answered: the snapshot replaces the aggregate wholesale;
//   - the ledger signalled the feature is not deployed: the session is
//     permanently marked unavailable and every later mutation is a no-op;
//   - any other failure: defaults are kept and the session stays usable,
//     so the app renders zero points instead of an error screen.
//
// In every outcome the loading flag is cleared.
func (s *Session) Hydrate(ctx context.Context) {
	snap, err := s.ledger.FetchState(ctx)

	if s.ctx.Err() != nil {
		return // session closed while the request was in flight
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case errors.Is(err, experience.ErrUnavailable):
		s.applyLocked(experience.SetUnavailableAction{})
		s.applyLocked(experience.SetLoadingAction{Loading: false})
	case err != nil:
		s.logger.Warn("experience hydration failed, keeping defaults", "error", err)
		s.applyLocked(experience.SetLoadingAction{Loading: false})
	case snap == nil:
		// No prior state for this student. Hydrate with defaults so
		// the loading flag clears through the same transition.
		s.applyLocked(experience.HydrateAction{})
	default:
		s.applyLocked(experience.HydrateAction{Snapshot: *snap})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// OPTIMISTIC MUTATIONS
// ══════════════════════════════════════════════════════════════════════════════

// AwardXP optimistically adds points and persists the award in the
// background. Source labels the origin of the award (e.g. "game:anagrams")
// and travels to the ledger as event metadata.
//
// No-op after the unavailable flag is set and for non-positive amounts.
// Awards issued while hydration is still outstanding apply and persist
// normally; the reducer suppresses their celebration events until the
// baseline arrives.
func (s *Session) AwardXP(amount experience.Points, source string) {
	s.mu.Lock()
	if s.state.IsUnavailable || amount <= 0 {
		s.mu.Unlock()
		return
	}

	s.seq++
	seq := s.seq
	s.applyLocked(experience.AwardXPAction{Amount: amount})
	s.mu.Unlock()

	ev := experience.LedgerEvent{
		Type:           experience.EventPointsAwarded,
		PointsDelta:    amount,
		Source:         source,
		IdempotencyKey: uuid.NewString(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		snap, err := s.ledger.SubmitEvent(s.ctx, ev)
		if err != nil {
			// Optimistic state stands; the sweep realigns it later.
			s.logger.Debug("xp persist failed", "source", source, "error", err)
			return
		}
		if snap != nil {
			s.reconcileAt(seq, *snap)
		}
	}()
}

// AwardBadge optimistically grants a badge and persists it in the
// background. Duplicate IDs and invalid entries are silently ignored.
// The persist response is discarded: badge events carry no points and
// a reconcile here could race a concurrent XP award.
func (s *Session) AwardBadge(badge experience.BadgeEntry) {
	s.mu.Lock()
	if s.state.IsUnavailable || !badge.IsValid() || s.state.HasBadge(badge.ID) {
		s.mu.Unlock()
		return
	}
	s.applyLocked(experience.AwardBadgeAction{Badge: badge})
	s.mu.Unlock()

	ev := experience.LedgerEvent{
		Type:           experience.EventBadgeEarned,
		Source:         "badge",
		BadgeID:        badge.ID,
		BadgeLabel:     badge.Label,
		IdempotencyKey: uuid.NewString(),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		if _, err := s.ledger.SubmitEvent(s.ctx, ev); err != nil {
			s.logger.Debug("badge persist failed", "badge_id", badge.ID, "error", err)
		}
	}()
}

// ══════════════════════════════════════════════════════════════════════════════
// READS
// ══════════════════════════════════════════════════════════════════════════════

// State returns a deep copy of the current aggregate.
func (s *Session) State() experience.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Points returns the current experience points.
func (s *Session) Points() experience.Points {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Points
}

// Level returns the current level.
func (s *Session) Level() experience.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Level
}

// IsLoading reports whether initial hydration is still in progress.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsLoading
}

// IsUnavailable reports whether the ledger declared the feature
// undeployed for the rest of the session.
func (s *Session) IsUnavailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsUnavailable
}

// ══════════════════════════════════════════════════════════════════════════════
// REWARD QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// PendingReward returns the currently displayed reward, or nil.
func (s *Session) PendingReward() *experience.PendingReward {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Current()
}

// ConfettiActive reports whether the displayed reward asks for confetti.
func (s *Session) ConfettiActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.ConfettiActive()
}

// DismissReward clears the displayed reward. Nothing is promoted in
// its place: rewards coalesce while the slot is occupied and the lost
// ones are deliberate.
func (s *Session) DismissReward() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Dismiss()
}

// ══════════════════════════════════════════════════════════════════════════════
// INTERNAL
// ══════════════════════════════════════════════════════════════════════════════

// applyLocked runs the reducer and routes emitted events into the
// reward queue. Caller holds s.mu.
func (s *Session) applyLocked(a experience.Action) {
	next, events := experience.Reduce(s.state, a)
	s.state = next

	for _, e := range events {
		if reward, ok := experience.RewardFor(e); ok {
			s.queue.Enqueue(reward)
		}
	}
}

// reconcileAt applies a server snapshot tagged with the mutation
// sequence that produced it. Responses older than the last applied
// one are dropped.
func (s *Session) reconcileAt(seq uint64, snap experience.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.lastReconcileSeq {
		return
	}
	s.lastReconcileSeq = seq
	s.applyLocked(experience.ReconcileServerAction{Snapshot: snap})
}

// nextSeq reserves a sequence number for an outbound request.
func (s *Session) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}
