package experience

// ══════════════════════════════════════════════════════════════════════════════
// ACTIONS
// ══════════════════════════════════════════════════════════════════════════════

// Action представляет именованный переход состояния.
type Action interface {
	// ActionName возвращает имя действия.
	ActionName() string
}

// HydrateAction - первоначальное заполнение агрегата данными реестра.
// Замещает все поля снапшота; отсутствующие поля получают значения
// по умолчанию (0 очков, пустые бейджи, нулевые серии, nil активность).
type HydrateAction struct {
	Snapshot Snapshot
}

// ActionName возвращает имя действия.
func (HydrateAction) ActionName() string { return "HYDRATE" }

// ReconcileServerAction - реконсиляция с ответом реестра после мутации.
// Замещает только переданные поля (nil в снапшоте = оставить как есть);
// серверное значение побеждает локальный оптимизм.
type ReconcileServerAction struct {
	Snapshot Snapshot
}

// ActionName возвращает имя действия.
func (ReconcileServerAction) ActionName() string { return "RECONCILE_SERVER" }

// AwardXPAction - оптимистичное начисление очков.
type AwardXPAction struct {
	Amount Points
}

// ActionName возвращает имя действия.
func (AwardXPAction) ActionName() string { return "AWARD_XP_OPTIMISTIC" }

// AwardBadgeAction - оптимистичное начисление бейджа.
// Если бейдж с таким ID уже есть, состояние не меняется.
type AwardBadgeAction struct {
	Badge BadgeEntry
}

// ActionName возвращает имя действия.
func (AwardBadgeAction) ActionName() string { return "AWARD_BADGE_OPTIMISTIC" }

// SetUnavailableAction - бэкенд сообщил, что функция не развёрнута.
// Флаг постоянен до конца сессии.
type SetUnavailableAction struct{}

// ActionName возвращает имя действия.
func (SetUnavailableAction) ActionName() string { return "SET_UNAVAILABLE" }

// SetLoadingAction - установка флага загрузки.
type SetLoadingAction struct {
	Loading bool
}

// ActionName возвращает имя действия.
func (SetLoadingAction) ActionName() string { return "SET_LOADING" }

// ══════════════════════════════════════════════════════════════════════════════
// REDUCER
// ══════════════════════════════════════════════════════════════════════════════

// Reduce применяет действие к состоянию и возвращает новое состояние
// вместе с доменными событиями, которые вызвал этот переход.
//
// Порядок событий внутри одного перехода фиксирован: сначала LevelUpEvent,
// затем StreakMilestoneEvent. Уровень всегда пересчитывается из очков.
func Reduce(s State, a Action) (State, []Event) {
	switch action := a.(type) {
	case HydrateAction:
		return reduceHydrate(s, action.Snapshot)
	case ReconcileServerAction:
		return reduceReconcile(s, action.Snapshot)
	case AwardXPAction:
		return reduceAwardXP(s, action.Amount)
	case AwardBadgeAction:
		return reduceAwardBadge(s, action.Badge)
	case SetUnavailableAction:
		next := s.Clone()
		next.IsUnavailable = true
		next.IsLoading = false
		return next, nil
	case SetLoadingAction:
		next := s.Clone()
		next.IsLoading = action.Loading
		return next, nil
	default:
		return s, nil
	}
}

// reduceHydrate замещает агрегат авторитетными данными реестра.
// Гидратация задаёт базовую линию: событие LevelUp не порождается,
// но достижение порога дневной серии фиксируется.
func reduceHydrate(s State, snap Snapshot) (State, []Event) {
	next := s.Clone()
	next.Points = snap.Points
	next.Level = DeriveLevel(snap.Points)

	next.Badges = snap.Badges
	if next.Badges == nil {
		next.Badges = []BadgeEntry{}
	}

	if snap.Streaks != nil {
		next.Streaks = *snap.Streaks
	} else {
		next.Streaks = Streaks{}
	}

	next.LastActivityAt = snap.LastActivityAt
	next.IsLoading = false

	var events []Event
	if !next.IsUnavailable && next.Streaks.Daily != s.Streaks.Daily && IsStreakMilestone(next.Streaks.Daily) {
		events = append(events, StreakMilestoneEvent{
			BaseEvent: newBaseEvent(),
			Days:      next.Streaks.Daily,
		})
	}
	return next, events
}

// reduceReconcile применяет серверную правду поверх локального оптимизма.
// Отсутствующие (nil) поля снапшота остаются нетронутыми.
func reduceReconcile(s State, snap Snapshot) (State, []Event) {
	next := s.Clone()
	next.Points = snap.Points
	next.Level = DeriveLevel(snap.Points)

	if snap.Badges != nil {
		next.Badges = snap.Badges
	}
	if snap.Streaks != nil {
		next.Streaks = *snap.Streaks
	}
	if snap.LastActivityAt != nil {
		next.LastActivityAt = snap.LastActivityAt
	}
	next.IsLoading = false

	var events []Event
	if !next.IsUnavailable && next.Level > s.Level {
		events = append(events, LevelUpEvent{
			BaseEvent: newBaseEvent(),
			OldLevel:  s.Level,
			NewLevel:  next.Level,
		})
	}
	if !next.IsUnavailable && next.Streaks.Daily != s.Streaks.Daily && IsStreakMilestone(next.Streaks.Daily) {
		events = append(events, StreakMilestoneEvent{
			BaseEvent: newBaseEvent(),
			Days:      next.Streaks.Daily,
		})
	}
	return next, events
}

func reduceAwardXP(s State, amount Points) (State, []Event) {
	next := s.Clone()
	next.Points = s.Points.Add(amount)
	next.Level = DeriveLevel(next.Points)

	var events []Event
	if !next.IsLoading && !next.IsUnavailable && next.Level > s.Level {
		events = append(events, LevelUpEvent{
			BaseEvent: newBaseEvent(),
			OldLevel:  s.Level,
			NewLevel:  next.Level,
		})
	}
	return next, events
}

func reduceAwardBadge(s State, badge BadgeEntry) (State, []Event) {
	if !badge.IsValid() || s.HasBadge(badge.ID) {
		return s, nil
	}

	next := s.Clone()
	next.Badges = append(next.Badges, badge)

	return next, []Event{BadgeEarnedEvent{
		BaseEvent: newBaseEvent(),
		Badge:     badge,
	}}
}
