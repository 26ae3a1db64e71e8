package session

import "github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"

// ══════════════════════════════════════════════════════════════════════════════
// REWARD QUEUE
// ══════════════════════════════════════════════════════════════════════════════

// rewardQueue is the single-slot display queue for celebration popups.
// A reward enqueues only into an empty slot; anything emitted while a
// popup is on screen is dropped, never buffered. Dismissal only clears
// the slot. Guarded by the session mutex.
type rewardQueue struct {
	current *experience.PendingReward
}

// Enqueue places the reward into the slot if it is empty.
// Reports whether the reward was accepted.
func (q *rewardQueue) Enqueue(r experience.PendingReward) bool {
	if q.current != nil {
		return false
	}
	q.current = &r
	return true
}

// Current returns a copy of the displayed reward, or nil.
func (q *rewardQueue) Current() *experience.PendingReward {
	if q.current == nil {
		return nil
	}
	r := *q.current
	return &r
}

// ConfettiActive reports whether the displayed reward asks for confetti.
func (q *rewardQueue) ConfettiActive() bool {
	return q.current != nil && q.current.ShowConfetti
}

// Dismiss empties the slot.
func (q *rewardQueue) Dismiss() {
	q.current = nil
}
