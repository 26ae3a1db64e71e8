package experience

import (
	"fmt"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// REWARDS (Награды)
// ══════════════════════════════════════════════════════════════════════════════

// RewardType представляет тип награды для показа.
type RewardType string

const (
	// RewardLevelUp - достигнут новый уровень.
	RewardLevelUp RewardType = "level_up"
	// RewardBadge - получен бейдж.
	RewardBadge RewardType = "badge"
	// RewardStreakMilestone - дневная серия достигла порога.
	RewardStreakMilestone RewardType = "streak_milestone"
)

// IsValid проверяет, что тип награды корректен.
func (r RewardType) IsValid() bool {
	switch r {
	case RewardLevelUp, RewardBadge, RewardStreakMilestone:
		return true
	default:
		return false
	}
}

// PendingReward представляет награду, ожидающую показа.
// В очереди показа может находиться не более одной награды.
type PendingReward struct {
	// Type - тип награды.
	Type RewardType

	// Title - заголовок для показа.
	Title string

	// Description - описание для показа.
	Description string

	// ShowConfetti - показывать ли конфетти вместе с наградой.
	ShowConfetti bool
}

// streakMilestones - фиксированные пороги дневной серии, достойные награды.
var streakMilestones = [...]int{3, 7, 30, 100}

// confettiStreakDays - минимальная серия, при которой награда идёт с конфетти.
const confettiStreakDays = 7

// IsStreakMilestone проверяет, является ли значение серии пороговым.
func IsStreakMilestone(days int) bool {
	for _, m := range streakMilestones {
		if days == m {
			return true
		}
	}
	return false
}

// StreakMilestones возвращает копию порогов дневной серии.
func StreakMilestones() []int {
	return append([]int(nil), streakMilestones[:]...)
}

// LevelUpReward создаёт награду за новый уровень.
func LevelUpReward(level Level) PendingReward {
	return PendingReward{
		Type:         RewardLevelUp,
		Title:        fmt.Sprintf("Level %d reached!", level),
		Description:  "You've unlocked new content and challenges.",
		ShowConfetti: true,
	}
}

// BadgeReward создаёт награду за полученный бейдж. Бейджи показываются
// без конфетти.
func BadgeReward(badge BadgeEntry) PendingReward {
	return PendingReward{
		Type:         RewardBadge,
		Title:        badge.DisplayTitle(),
		Description:  "Keep going to earn more!",
		ShowConfetti: false,
	}
}

// StreakMilestoneReward создаёт награду за пороговое значение серии.
// Конфетти начинается с серии в 7 дней.
func StreakMilestoneReward(days int) PendingReward {
	return PendingReward{
		Type:         RewardStreakMilestone,
		Title:        fmt.Sprintf("%d-Day Streak!", days),
		Description:  "You're on fire. Keep the learning going!",
		ShowConfetti: days >= confettiStreakDays,
	}
}

// RewardFor строит награду для доменного события.
// Возвращает false для событий, не требующих показа.
func RewardFor(e Event) (PendingReward, bool) {
	switch event := e.(type) {
	case LevelUpEvent:
		return LevelUpReward(event.NewLevel), true
	case BadgeEarnedEvent:
		return BadgeReward(event.Badge), true
	case StreakMilestoneEvent:
		return StreakMilestoneReward(event.Days), true
	default:
		return PendingReward{}, false
	}
}

// HumanizeBadgeID превращает идентификатор бейджа в человекочитаемое
// название: "speed-reader" -> "Speed reader".
func HumanizeBadgeID(id string) string {
	if id == "" {
		return ""
	}
	label := strings.ReplaceAll(id, "-", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
