// Package ledger implements the remote experience-ledger API client.
package ledger

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// DTOs - Data Transfer Objects matching the ledger API wire format
// ══════════════════════════════════════════════════════════════════════════════

// StateResponseDTO is the envelope returned by the experience-state endpoint.
// An absent or null state means the user has no aggregate yet.
type StateResponseDTO struct {
	State *StateDTO `json:"state"`
}

// StateDTO contains the authoritative experience aggregate as the ledger
// stores it. Every field is optional on the wire; the mapper applies
// defensive defaults.
type StateDTO struct {
	Points         *int        `json:"points,omitempty"`
	Level          *int        `json:"level,omitempty"`
	Badges         []BadgeDTO  `json:"badges,omitempty"`
	Streaks        *StreaksDTO `json:"streaks,omitempty"`
	LastActivityAt string      `json:"last_activity_at,omitempty"`
}

// BadgeDTO represents a single earned badge.
type BadgeDTO struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	EarnedAt string `json:"earnedAt,omitempty"`
}

// StreaksDTO contains the streak counters.
type StreaksDTO struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

// EventRequestDTO is the body POSTed to the experience-event endpoint.
type EventRequestDTO struct {
	EventType      string            `json:"eventType"`
	PointsDelta    int               `json:"pointsDelta"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	BadgeID        string            `json:"badgeId,omitempty"`
	BadgeLabel     string            `json:"badgeLabel,omitempty"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty"`
}

// GameResultRequestDTO is the body POSTed to the game-result endpoint.
type GameResultRequestDTO struct {
	GameType         string `json:"gameType"`
	Difficulty       string `json:"difficulty"`
	Score            int    `json:"score"`
	MaxScore         int    `json:"maxScore"`
	TimeMs           int64  `json:"timeMs"`
	StudentProfileID string `json:"studentProfileId,omitempty"`
}

// GameResultResponseDTO is the game-result endpoint's success payload.
type GameResultResponseDTO struct {
	Result          *GameResultInnerDTO `json:"result,omitempty"`
	PointsAwarded   *int                `json:"pointsAwarded,omitempty"`
	BadgeEarned     string              `json:"badgeEarned,omitempty"`
	NormalizedScore *float64            `json:"normalizedScore,omitempty"`
}

// GameResultInnerDTO carries the star rating.
type GameResultInnerDTO struct {
	Stars *int `json:"stars,omitempty"`
}

// APIErrorDTO is the ledger's error payload, carried as a typed error.
type APIErrorDTO struct {
	StatusCode int    `json:"-"`
	Message    string `json:"error"`
}

// Error implements the error interface.
func (e *APIErrorDTO) Error() string {
	return e.Message
}

// parseTimestamp parses an RFC3339 timestamp defensively.
// Returns nil for empty or malformed values.
func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}
