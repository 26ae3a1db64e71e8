package experience

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Points представляет накопленные очки опыта ученика.
type Points int

// IsValid проверяет, что Points неотрицательные.
func (p Points) IsValid() bool {
	return p >= 0
}

// Add складывает очки.
func (p Points) Add(delta Points) Points {
	return p + delta
}

// Level представляет уровень ученика, вычисляемый из очков.
type Level int

const (
	// PointsPerLevel - количество очков на один уровень.
	PointsPerLevel = 100
	// MinLevel - минимальный уровень.
	MinLevel Level = 1
	// MaxLevel - максимальный уровень (потолок прогрессии).
	MaxLevel Level = 20
)

// DeriveLevel вычисляет уровень из очков.
// Формула: clamp(1 + floor(points/100), 1, 20). Уровень никогда не берётся
// из внешних данных без пересчёта, чтобы агрегат не разошёлся с формулой.
func DeriveLevel(p Points) Level {
	if p < 0 {
		return MinLevel
	}
	level := Level(1 + int(p)/PointsPerLevel)
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// BadgeEntry представляет полученный бейдж. Идентичность - поле ID:
// бейдж с уже имеющимся ID не может быть получен повторно.
type BadgeEntry struct {
	// ID - уникальный идентификатор бейджа (например, "bookworm").
	ID string

	// Label - человекочитаемое название для отображения (опционально).
	Label string

	// EarnedAt - когда бейдж получен.
	EarnedAt time.Time
}

// IsValid проверяет корректность бейджа.
func (b BadgeEntry) IsValid() bool {
	return b.ID != ""
}

// DisplayTitle возвращает название для отображения.
func (b BadgeEntry) DisplayTitle() string {
	if b.Label != "" {
		return b.Label
	}
	return "Badge earned: " + b.ID
}

// Streaks представляет счётчики серий активности.
type Streaks struct {
	// Daily - количество дней подряд с активностью.
	Daily int

	// Weekly - количество недель подряд с активностью.
	Weekly int
}

// IsValid проверяет, что счётчики неотрицательные.
func (s Streaks) IsValid() bool {
	return s.Daily >= 0 && s.Weekly >= 0
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATE: STATE
// ══════════════════════════════════════════════════════════════════════════════

// State - агрегат опыта ученика. Один экземпляр на сессию.
// Мутируется только через Reduce; снаружи агрегат читается копией.
type State struct {
	// Points - накопленные очки опыта.
	Points Points

	// Level - текущий уровень. Производное поле: всегда равно
	// DeriveLevel(Points), пересчитывается при каждом переходе.
	Level Level

	// Badges - полученные бейджи. Уникальность по ID; порядок вставки
	// сохраняется для отображения.
	Badges []BadgeEntry

	// Streaks - серии активности (дневная и недельная).
	Streaks Streaks

	// LastActivityAt - время последней активности (nil, если неизвестно).
	LastActivityAt *time.Time

	// IsLoading - true только во время первоначальной гидратации.
	IsLoading bool

	// IsUnavailable - true, если бэкенд сообщил, что функция не
	// развёрнута. Флаг постоянен до конца сессии: все дальнейшие
	// мутации становятся no-op.
	IsUnavailable bool
}

// NewState создаёт пустое начальное состояние сессии.
func NewState() State {
	return State{
		Points:    0,
		Level:     MinLevel,
		Streaks:   Streaks{},
		IsLoading: true,
	}
}

// HasBadge проверяет, есть ли у ученика бейдж с данным ID.
func (s State) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Clone возвращает глубокую копию состояния.
func (s State) Clone() State {
	clone := s
	if s.Badges != nil {
		clone.Badges = make([]BadgeEntry, len(s.Badges))
		copy(clone.Badges, s.Badges)
	}
	if s.LastActivityAt != nil {
		t := *s.LastActivityAt
		clone.LastActivityAt = &t
	}
	return clone
}

// Snapshot - авторитетные значения агрегата, полученные от удалённого
// реестра. Опциональность полей (nil) трактуется действием, в которое
// снапшот вложен: гидратация замещает всё, реконсиляция оставляет
// отсутствующие поля как есть.
type Snapshot struct {
	// Points - канонические очки.
	Points Points

	// Badges - канонический набор бейджей (nil = не передан).
	Badges []BadgeEntry

	// Streaks - канонические серии (nil = не передан).
	Streaks *Streaks

	// LastActivityAt - каноническое время активности (nil = не передано).
	LastActivityAt *time.Time
}
