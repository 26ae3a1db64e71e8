package experience

// ══════════════════════════════════════════════════════════════════════════════
// GAME RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// GameResultInput содержит результат завершённой игры для отправки в реестр.
type GameResultInput struct {
	// GameType - тип игры (например, "letter-catcher").
	GameType string

	// Difficulty - сложность ("easy", "medium", "hard").
	Difficulty string

	// Score - набранные очки.
	Score int

	// MaxScore - максимально возможные очки.
	MaxScore int

	// TimeMs - длительность игры в миллисекундах.
	TimeMs int64

	// StudentProfileID - профиль ученика (опционально, для семей
	// с несколькими профилями).
	StudentProfileID string
}

// GameResultOutcome содержит подтверждённый реестром итог игры.
type GameResultOutcome struct {
	// Stars - количество звёзд (0-3).
	Stars int

	// PointsAwarded - начисленные очки.
	PointsAwarded Points

	// BadgeEarned - идентификатор заработанного бейджа (пусто, если нет).
	BadgeEarned string

	// NormalizedScore - нормализованный счёт 0..1 (nil, если не передан).
	NormalizedScore *float64

	// Error - сообщение об ошибке. Единственный пользовательский
	// канал ошибок подсистемы: все остальные сбои деградируют молча.
	Error string
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER EVENTS (Мутации, отправляемые в реестр)
// ══════════════════════════════════════════════════════════════════════════════

// LedgerEventType представляет тип события реестра.
type LedgerEventType string

const (
	// EventPointsAwarded - начисление очков.
	EventPointsAwarded LedgerEventType = "points_awarded"
	// EventBadgeEarned - получение бейджа.
	EventBadgeEarned LedgerEventType = "badge_earned"
)

// LedgerEvent - мутация агрегата, отправляемая в удалённый реестр.
type LedgerEvent struct {
	// Type - тип события.
	Type LedgerEventType

	// PointsDelta - начисляемые очки (для points_awarded).
	PointsDelta Points

	// Source - источник начисления, сохраняется в метаданных события.
	Source string

	// BadgeID - идентификатор бейджа (для badge_earned).
	BadgeID string

	// BadgeLabel - название бейджа (для badge_earned).
	BadgeLabel string

	// IdempotencyKey - клиентский ключ идемпотентности. Позволяет
	// реестру дедуплицировать повторную доставку даже между
	// несколькими открытыми сессиями одного пользователя.
	IdempotencyKey string
}
