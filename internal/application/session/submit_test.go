package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

func gameInput() experience.GameResultInput {
	return experience.GameResultInput{
		GameType:   "anagrams",
		Difficulty: "medium",
		Score:      80,
		MaxScore:   100,
		TimeMs:     45000,
	}
}

func TestSubmissionAdapter_Success(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap: &experience.Snapshot{},
		gameOutcome: experience.GameResultOutcome{
			Stars:         3,
			PointsAwarded: 50,
			BadgeEarned:   "speed-reader",
		},
	}
	s := newTestSession(ledger)
	s.Hydrate(context.Background())
	adapter := NewSubmissionAdapter(s)

	outcome := adapter.Submit(context.Background(), gameInput())

	assert.Empty(t, outcome.Error)
	assert.Equal(t, 3, outcome.Stars)
	assert.Equal(t, experience.Points(50), outcome.PointsAwarded)

	s.Close()

	// Confirmed awards flow back into the aggregate.
	assert.Equal(t, experience.Points(50), s.Points())
	st := s.State()
	require.True(t, st.HasBadge("speed-reader"))
	for _, b := range st.Badges {
		if b.ID == "speed-reader" {
			assert.Equal(t, "Speed reader", b.Label)
		}
	}

	events := ledger.recordedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, experience.EventPointsAwarded, events[0].Type)
	assert.Equal(t, "game:anagrams", events[0].Source)
	assert.Equal(t, experience.EventBadgeEarned, events[1].Type)

	last := adapter.LastResult()
	require.NotNil(t, last)
	assert.Equal(t, 3, last.Stars)
}

func TestSubmissionAdapter_ServerErrorPassedThrough(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap:   &experience.Snapshot{},
		gameOutcome: experience.GameResultOutcome{Error: "Invalid game type."},
	}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())
	adapter := NewSubmissionAdapter(s)

	outcome := adapter.Submit(context.Background(), gameInput())

	assert.Equal(t, "Invalid game type.", outcome.Error)
	assert.Equal(t, experience.Points(0), s.Points(), "no awards on a rejected result")
}

func TestSubmissionAdapter_TransportError(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap: &experience.Snapshot{},
		gameErr:   errors.New("connection reset"),
	}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())
	adapter := NewSubmissionAdapter(s)

	outcome := adapter.Submit(context.Background(), gameInput())

	assert.Equal(t, "Network error. Your score has been saved locally.", outcome.Error)
	assert.False(t, adapter.IsSubmitting())
}

func TestSubmissionAdapter_UnavailableSkipsNetwork(t *testing.T) {
	ledger := &fakeLedger{fetchErr: fmt.Errorf("ledger: %w", experience.ErrUnavailable)}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())
	require.True(t, s.IsUnavailable())

	adapter := NewSubmissionAdapter(s)
	outcome := adapter.Submit(context.Background(), gameInput())

	assert.Equal(t, experience.GameResultOutcome{}, outcome, "games stay playable without the backend")
	assert.Equal(t, 0, ledger.gameResultCalls())
}

func TestSubmissionAdapter_RejectsConcurrentSubmit(t *testing.T) {
	block := make(chan struct{})
	ledger := &fakeLedger{
		fetchSnap:   &experience.Snapshot{},
		gameOutcome: experience.GameResultOutcome{Stars: 2},
		gameBlock:   block,
	}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())
	adapter := NewSubmissionAdapter(s)

	done := make(chan experience.GameResultOutcome, 1)
	go func() {
		done <- adapter.Submit(context.Background(), gameInput())
	}()

	require.Eventually(t, func() bool {
		return adapter.IsSubmitting()
	}, time.Second, time.Millisecond)

	second := adapter.Submit(context.Background(), gameInput())
	assert.Equal(t, "Already submitting.", second.Error)

	close(block)
	first := <-done
	assert.Equal(t, 2, first.Stars)
	assert.False(t, adapter.IsSubmitting())
	assert.Equal(t, 1, ledger.gameResultCalls())
}

func TestSubmissionAdapter_ConcurrentSubmitReturnsPreviousOutcome(t *testing.T) {
	ledger := &fakeLedger{
		fetchSnap:   &experience.Snapshot{},
		gameOutcome: experience.GameResultOutcome{Stars: 3, PointsAwarded: 50},
	}
	s := newTestSession(ledger)
	defer s.Close()
	s.Hydrate(context.Background())
	adapter := NewSubmissionAdapter(s)

	// First round completes and becomes the remembered outcome.
	first := adapter.Submit(context.Background(), gameInput())
	require.Equal(t, 3, first.Stars)

	// Second round blocks; a duplicate call during it gets the
	// remembered outcome, not the synthetic error.
	block := make(chan struct{})
	ledger.mu.Lock()
	ledger.gameBlock = block
	ledger.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		adapter.Submit(context.Background(), gameInput())
	}()

	require.Eventually(t, func() bool {
		return adapter.IsSubmitting()
	}, time.Second, time.Millisecond)

	duplicate := adapter.Submit(context.Background(), gameInput())
	assert.Empty(t, duplicate.Error)
	assert.Equal(t, 3, duplicate.Stars)
	assert.Equal(t, experience.Points(50), duplicate.PointsAwarded)

	close(block)
	<-done
	assert.Equal(t, 2, ledger.gameResultCalls())
}
