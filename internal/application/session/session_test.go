package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

// fakeLedger is an in-memory Ledger double recording every call.
type fakeLedger struct {
	mu sync.Mutex

	fetchSnap  *experience.Snapshot
	fetchErr   error
	fetchBlock chan struct{}

	submitSnap *experience.Snapshot
	submitErr  error
	events     []experience.LedgerEvent

	gameOutcome experience.GameResultOutcome
	gameErr     error
	gameCalls   int
	gameBlock   chan struct{}
}

func (f *fakeLedger) FetchState(ctx context.Context) (*experience.Snapshot, error) {
	f.mu.Lock()
	block := f.fetchBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchSnap, nil
}

func (f *fakeLedger) SubmitEvent(ctx context.Context, ev experience.LedgerEvent) (*experience.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitSnap, nil
}

func (f *fakeLedger) SubmitGameResult(ctx context.Context, in experience.GameResultInput) (experience.GameResultOutcome, error) {
	f.mu.Lock()
	f.gameCalls++
	block := f.gameBlock
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gameErr != nil {
		return experience.GameResultOutcome{}, f.gameErr
	}
	return f.gameOutcome, nil
}

func (f *fakeLedger) recordedEvents() []experience.LedgerEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]experience.LedgerEvent, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeLedger) gameResultCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gameCalls
}

func newTestSession(ledger Ledger) *Session {
	return NewSession(Config{
		Ledger: ledger,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestSession_Hydrate_Success(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{
		Points:  250,
		Badges:  []experience.BadgeEntry{{ID: "bookworm", Label: "Bookworm"}},
		Streaks: &experience.Streaks{Daily: 2},
	}}
	s := newTestSession(ledger)
	defer s.Close()

	s.Hydrate(context.Background())

	assert.Equal(t, experience.Points(250), s.Points())
	assert.Equal(t, experience.Level(3), s.Level())
	assert.False(t, s.IsLoading())
	assert.False(t, s.IsUnavailable())
	assert.Nil(t, s.PendingReward(), "hydration is a baseline, not a celebration")
}

func TestSession_Hydrate_Unavailable(t *testing.T) {
	ledger := &fakeLedger{fetchErr: fmt.Errorf("ledger: %w", experience.ErrUnavailable)}
	s := newTestSession(ledger)
	defer s.Close()

	s.Hydrate(context.Background())

	assert.True(t, s.IsUnavailable())
	assert.False(t, s.IsLoading())

	// Mutations after the flag are no-ops and never touch the network.
	s.AwardXP(50, "lesson")
	assert.Equal(t, experience.Points(0), s.Points())
	assert.Empty(t, ledger.recordedEvents())
}

func TestSession_Hydrate_FailureKeepsDefaults(t *testing.T) {
	ledger := &fakeLedger{fetchErr: errors.New("connection refused")}
	s := newTestSession(ledger)
	defer s.Close()

	s.Hydrate(context.Background())

	assert.Equal(t, experience.Points(0), s.Points())
	assert.Equal(t, experience.MinLevel, s.Level())
	assert.False(t, s.IsLoading())
	assert.False(t, s.IsUnavailable(), "a transient failure must not poison the session")
}

func TestSession_Hydrate_NoPriorState(t *testing.T) {
	s := newTestSession(&fakeLedger{})
	defer s.Close()

	s.Hydrate(context.Background())

	assert.Equal(t, experience.Points(0), s.Points())
	assert.False(t, s.IsLoading())
	st := s.State()
	assert.NotNil(t, st.Badges)
}

func TestSession_AwardXP_OptimisticThenPersist(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{}}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())

	s.AwardXP(120, "lesson:phonics")

	// The local aggregate updates before the ledger answers.
	assert.Equal(t, experience.Points(120), s.Points())
	assert.Equal(t, experience.Level(2), s.Level())

	reward := s.PendingReward()
	require.NotNil(t, reward)
	assert.Equal(t, experience.RewardLevelUp, reward.Type)
	assert.Equal(t, "Level 2 reached!", reward.Title)
	assert.True(t, s.ConfettiActive())

	s.Close()

	events := ledger.recordedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, experience.EventPointsAwarded, events[0].Type)
	assert.Equal(t, experience.Points(120), events[0].PointsDelta)
	assert.Equal(t, "lesson:phonics", events[0].Source)
	assert.NotEmpty(t, events[0].IdempotencyKey)
}

func TestSession_AwardXP_ServerSnapshotWins(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap:  &experience.Snapshot{},
		submitSnap: &experience.Snapshot{Points: 150},
	}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())

	s.AwardXP(120, "lesson")
	s.Close()

	assert.Equal(t, experience.Points(150), s.Points(), "the ledger's total replaces the optimistic one")
	assert.Equal(t, experience.Level(2), s.Level())
}

func TestSession_AwardXP_PersistFailureKeepsOptimisticState(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap: &experience.Snapshot{},
		submitErr: errors.New("timeout"),
	}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())

	s.AwardXP(30, "lesson")
	s.Close()

	assert.Equal(t, experience.Points(30), s.Points(), "no rollback on persist failure")
}

func TestSession_AwardXP_Guards(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{}}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())

	// Non-positive amounts: ignored.
	s.AwardXP(0, "lesson")
	s.AwardXP(-10, "lesson")
	assert.Equal(t, experience.Points(0), s.Points())
	assert.Empty(t, ledger.recordedEvents())
}

func TestSession_AwardXP_DuringHydrationWindow(t *testing.T) {
	ledger := &fakeLedger{}
	s := newTestSession(ledger)

	// An award before hydration completes still applies and persists;
	// only its celebration is suppressed until the baseline arrives.
	s.AwardXP(150, "lesson")

	assert.True(t, s.IsLoading())
	assert.Equal(t, experience.Points(150), s.Points())
	assert.Equal(t, experience.Level(2), s.Level())
	assert.Nil(t, s.PendingReward(), "no level-up popup without a baseline")

	s.Close()

	events := ledger.recordedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, experience.EventPointsAwarded, events[0].Type)
	assert.Equal(t, experience.Points(150), events[0].PointsDelta)
}

func TestSession_AwardBadge(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{}}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())

	badge := experience.BadgeEntry{ID: "speed-reader", Label: "Speed Reader", EarnedAt: time.Now()}
	s.AwardBadge(badge)
	s.AwardBadge(badge) // duplicate, ignored

	st := s.State()
	require.Len(t, st.Badges, 1)
	assert.Equal(t, "speed-reader", st.Badges[0].ID)

	reward := s.PendingReward()
	require.NotNil(t, reward)
	assert.Equal(t, experience.RewardBadge, reward.Type)
	assert.False(t, reward.ShowConfetti)

	s.Close()

	events := ledger.recordedEvents()
	require.Len(t, events, 1, "the duplicate is filtered before the network")
	assert.Equal(t, experience.EventBadgeEarned, events[0].Type)
	assert.Equal(t, "speed-reader", events[0].BadgeID)
	assert.NotEmpty(t, events[0].IdempotencyKey)
}

func TestSession_RewardSlot_DropsWhileOccupied(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{}}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())

	s.AwardXP(120, "lesson") // level-up occupies the slot
	s.AwardBadge(experience.BadgeEntry{ID: "bookworm", Label: "Bookworm", EarnedAt: time.Now()})

	reward := s.PendingReward()
	require.NotNil(t, reward)
	assert.Equal(t, experience.RewardLevelUp, reward.Type, "the badge reward is dropped, not queued")

	s.DismissReward()
	assert.Nil(t, s.PendingReward())
	assert.False(t, s.ConfettiActive())

	// The badge itself was still granted; only its popup was lost.
	assert.True(t, s.State().HasBadge("bookworm"))
}

func TestSession_Hydrate_AfterCloseDoesNotDispatch(t *testing.T) {
	block := make(chan struct{})
	ledger := &fakeLedger{
		fetchSnap:  &experience.Snapshot{Points: 250},
		fetchBlock: block,
	}
	s := newTestSession(ledger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Hydrate(context.Background())
	}()

	s.Close()
	close(block)
	<-done

	// The late response is discarded wholesale: nothing hydrated,
	// the loading flag untouched.
	assert.True(t, s.IsLoading())
	assert.Equal(t, experience.Points(0), s.Points())
}

func TestSession_StaleReconcileDropped(t *testing.T) {
	s := newTestSession(&fakeLedger{fetchSnap: &experience.Snapshot{}})
	defer s.Close()
	s.Hydrate(context.Background())

	first := s.nextSeq()
	second := s.nextSeq()

	s.reconcileAt(second, experience.Snapshot{Points: 300})
	s.reconcileAt(first, experience.Snapshot{Points: 100})

	assert.Equal(t, experience.Points(300), s.Points(), "an older response must not overwrite a newer one")
}

func TestSession_Sweep_RealignsDrift(t *testing.T) {
	ledger := &fakeLedger{fetchSnap: &experience.Snapshot{}}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())

	ledger.mu.Lock()
	ledger.fetchSnap = &experience.Snapshot{Points: 500}
	ledger.mu.Unlock()

	s.StartSweep(10 * time.Millisecond)

	require.Eventually(t, func() bool {
		return s.Points() == 500
	}, 2*time.Second, 10*time.Millisecond, "the sweep should pick up the authoritative total")

	s.Close()
}
