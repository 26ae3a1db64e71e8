package experience

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStreakMilestone(t *testing.T) {
	for _, days := range []int{3, 7, 30, 100} {
		assert.True(t, IsStreakMilestone(days), "days=%d", days)
	}
	for _, days := range []int{0, 1, 2, 4, 5, 6, 8, 29, 31, 99, 101} {
		assert.False(t, IsStreakMilestone(days), "days=%d", days)
	}
}

func TestStreakMilestones_ReturnsIndependentCopy(t *testing.T) {
	got := StreakMilestones()
	assert.Equal(t, []int{3, 7, 30, 100}, got)

	got[0] = 999
	assert.Equal(t, []int{3, 7, 30, 100}, StreakMilestones())
	assert.True(t, IsStreakMilestone(3))
}

func TestStreakMilestoneReward_Confetti(t *testing.T) {
	tests := []struct {
		days         int
		wantConfetti bool
	}{
		{3, false},
		{7, true},
		{30, true},
		{100, true},
	}

	for _, tt := range tests {
		reward := StreakMilestoneReward(tt.days)
		assert.Equal(t, RewardStreakMilestone, reward.Type)
		assert.Equal(t, tt.wantConfetti, reward.ShowConfetti, "days=%d", tt.days)
	}

	assert.Equal(t, "7-Day Streak!", StreakMilestoneReward(7).Title)
}

func TestLevelUpReward(t *testing.T) {
	reward := LevelUpReward(4)

	assert.Equal(t, RewardLevelUp, reward.Type)
	assert.Equal(t, "Level 4 reached!", reward.Title)
	assert.True(t, reward.ShowConfetti)
}

func TestBadgeReward(t *testing.T) {
	reward := BadgeReward(BadgeEntry{ID: "bookworm", Label: "Bookworm"})

	assert.Equal(t, RewardBadge, reward.Type)
	assert.Equal(t, "Bookworm", reward.Title)
	assert.False(t, reward.ShowConfetti, "badges never trigger confetti")
}

func TestRewardFor(t *testing.T) {
	reward, ok := RewardFor(LevelUpEvent{NewLevel: 5})
	require.True(t, ok)
	assert.Equal(t, "Level 5 reached!", reward.Title)

	reward, ok = RewardFor(BadgeEarnedEvent{Badge: BadgeEntry{ID: "explorer"}})
	require.True(t, ok)
	assert.Equal(t, RewardBadge, reward.Type)

	reward, ok = RewardFor(StreakMilestoneEvent{Days: 30})
	require.True(t, ok)
	assert.True(t, reward.ShowConfetti)
}

func TestHumanizeBadgeID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"speed-reader", "Speed reader"},
		{"bookworm", "Bookworm"},
		{"first-game-won", "First game won"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanizeBadgeID(tt.id))
	}
}

func TestRewardType_IsValid(t *testing.T) {
	assert.True(t, RewardLevelUp.IsValid())
	assert.True(t, RewardBadge.IsValid())
	assert.True(t, RewardStreakMilestone.IsValid())
	assert.False(t, RewardType("jackpot").IsValid())
}
