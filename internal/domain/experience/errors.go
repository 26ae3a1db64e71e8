package experience

import "errors"

// ErrUnavailable - подсистема опыта не развёрнута для этого пользователя.
// Ошибка постоянна в рамках сессии: повторные запросы не помогут.
var ErrUnavailable = errors.New("experience: feature unavailable")
