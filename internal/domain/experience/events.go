package experience

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// События, которые порождает переход состояния. Reduce сам решает в момент
// перехода, что именно произошло - отдельных наблюдателей со сравнением
// "до/после" нет, поэтому каждое событие порождается ровно один раз.
// ══════════════════════════════════════════════════════════════════════════════

// Event представляет базовый интерфейс доменного события.
type Event interface {
	// EventName возвращает имя события.
	EventName() string

	// OccurredAt возвращает время события.
	OccurredAt() time.Time
}

// BaseEvent содержит общие поля для всех событий.
type BaseEvent struct {
	Timestamp time.Time
}

// OccurredAt возвращает время события.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// LevelUpEvent - уровень ученика вырос.
type LevelUpEvent struct {
	BaseEvent
	OldLevel Level
	NewLevel Level
}

// EventName возвращает имя события.
func (e LevelUpEvent) EventName() string {
	return "experience.level_up"
}

// BadgeEarnedEvent - ученик получил новый бейдж.
// Порождается только оптимистичным начислением: бейджи, пришедшие
// в снапшоте реконсиляции, событий не создают.
type BadgeEarnedEvent struct {
	BaseEvent
	Badge BadgeEntry
}

// EventName возвращает имя события.
func (e BadgeEarnedEvent) EventName() string {
	return "experience.badge_earned"
}

// StreakMilestoneEvent - дневная серия достигла порогового значения.
type StreakMilestoneEvent struct {
	BaseEvent
	Days int
}

// EventName возвращает имя события.
func (e StreakMilestoneEvent) EventName() string {
	return "experience.streak_milestone"
}

func newBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}
