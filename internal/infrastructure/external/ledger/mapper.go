package ledger

import (
	"time"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to domain transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper handles transformation between ledger API DTOs and domain values.
// This is an Anti-Corruption Layer: malformed or partial payloads degrade
// to defaults instead of propagating into the aggregate.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// HydrationSnapshot converts a state DTO into a full snapshot for session
// hydration. Missing fields fall back to defaults: 0 points, empty badge
// set, zero streaks, no activity timestamp.
func (m *Mapper) HydrationSnapshot(dto *StateDTO) *experience.Snapshot {
	if dto == nil {
		return nil
	}

	snap := &experience.Snapshot{
		Badges:         m.badgesFromDTO(dto.Badges),
		Streaks:        &experience.Streaks{},
		LastActivityAt: parseTimestamp(dto.LastActivityAt),
	}
	if snap.Badges == nil {
		snap.Badges = []experience.BadgeEntry{}
	}
	if dto.Points != nil && *dto.Points >= 0 {
		snap.Points = experience.Points(*dto.Points)
	}
	if dto.Streaks != nil {
		snap.Streaks = &experience.Streaks{
			Daily:  maxInt(dto.Streaks.Daily, 0),
			Weekly: maxInt(dto.Streaks.Weekly, 0),
		}
	}
	return snap
}

// ReconcileSnapshot converts a state DTO into a reconciliation snapshot.
// Unlike hydration, fields absent from the payload stay nil so the
// reducer leaves the current values untouched. Streak counters are never
// reconciled on the mutation path; only hydration and the periodic sweep
// replace them.
func (m *Mapper) ReconcileSnapshot(dto *StateDTO) *experience.Snapshot {
	if dto == nil || dto.Points == nil || *dto.Points < 0 {
		// Without an authoritative points total there is nothing safe
		// to reconcile; the optimistic state stands.
		return nil
	}

	return &experience.Snapshot{
		Points:         experience.Points(*dto.Points),
		Badges:         m.badgesFromDTO(dto.Badges),
		LastActivityAt: parseTimestamp(dto.LastActivityAt),
	}
}

// OutcomeFromDTO converts a game-result response into a domain outcome.
// Stars and points default to zero when absent.
func (m *Mapper) OutcomeFromDTO(dto *GameResultResponseDTO) experience.GameResultOutcome {
	if dto == nil {
		return experience.GameResultOutcome{}
	}

	outcome := experience.GameResultOutcome{
		BadgeEarned:     dto.BadgeEarned,
		NormalizedScore: dto.NormalizedScore,
	}
	if dto.Result != nil && dto.Result.Stars != nil {
		outcome.Stars = *dto.Result.Stars
	}
	if dto.PointsAwarded != nil && *dto.PointsAwarded > 0 {
		outcome.PointsAwarded = experience.Points(*dto.PointsAwarded)
	}
	return outcome
}

// EventToDTO converts a ledger event into its wire representation.
func (m *Mapper) EventToDTO(ev experience.LedgerEvent) EventRequestDTO {
	dto := EventRequestDTO{
		EventType:      string(ev.Type),
		PointsDelta:    int(ev.PointsDelta),
		BadgeID:        ev.BadgeID,
		BadgeLabel:     ev.BadgeLabel,
		IdempotencyKey: ev.IdempotencyKey,
	}
	if ev.Source != "" {
		dto.Metadata = map[string]string{"source": ev.Source}
	}
	return dto
}

// GameResultToDTO converts a game result input into its wire representation.
func (m *Mapper) GameResultToDTO(in experience.GameResultInput) GameResultRequestDTO {
	return GameResultRequestDTO{
		GameType:         in.GameType,
		Difficulty:       in.Difficulty,
		Score:            in.Score,
		MaxScore:         in.MaxScore,
		TimeMs:           in.TimeMs,
		StudentProfileID: in.StudentProfileID,
	}
}

// badgesFromDTO converts badge DTOs, skipping entries without an id.
func (m *Mapper) badgesFromDTO(dtos []BadgeDTO) []experience.BadgeEntry {
	if dtos == nil {
		return nil
	}

	badges := make([]experience.BadgeEntry, 0, len(dtos))
	for _, dto := range dtos {
		if dto.ID == "" {
			continue
		}
		badge := experience.BadgeEntry{
			ID:    dto.ID,
			Label: dto.Label,
		}
		if at := parseTimestamp(dto.EarnedAt); at != nil {
			badge.EarnedAt = *at
		} else {
			badge.EarnedAt = time.Now().UTC()
		}
		badges = append(badges, badge)
	}
	return badges
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
