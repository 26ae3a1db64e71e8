// Package experience содержит доменную модель опыта ученика Koydo.
//
// Это ядро подсистемы наград: агрегат опыта (очки, производный уровень,
// бейджи, серии активности) и чистая функция переходов над ним. Пакет
// определяет:
//
//   - Агрегат: State (очки, уровень, бейджи, серии, флаги загрузки)
//   - Value Objects: Points, Level, BadgeEntry, Streaks
//   - Действия (Actions): Hydrate, ReconcileServer, AwardXP, AwardBadge и др.
//   - Доменные события (Events): LevelUp, BadgeEarned, StreakMilestone
//   - Награды: PendingReward и конструкторы наград для каждого события
//
// # Архитектурные принципы
//
//  1. Нулевые внешние зависимости - только стандартная библиотека Go
//  2. Все переходы состояния проходят через Reduce - чистую функцию,
//     которая сама решает, какое событие вызвал переход. Это убирает
//     неоднозначность порядка срабатывания независимых наблюдателей.
//  3. Уровень никогда не хранится независимо - он всегда пересчитывается
//     из очков формулой DeriveLevel, даже если сервер прислал своё значение.
//
// # Пример использования
//
//	state := NewState()
//	state, events := Reduce(state, HydrateAction{Snapshot: snap})
//	state, events = Reduce(state, AwardXPAction{Amount: 25})
//	for _, e := range events {
//	    if reward, ok := RewardFor(e); ok {
//	        queue.Enqueue(reward)
//	    }
//	}
package experience
