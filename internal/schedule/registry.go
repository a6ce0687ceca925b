package schedule

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gometeo/bot/internal/model"
)

// Registry - реестр подписок в памяти, один владелец состояния.
// Обработчики команд пишут, фоновый диспетчер читает снимок.
type Registry struct {
	mu      sync.RWMutex
	entries map[int64]model.ScheduleEntry
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		entries: make(map[int64]model.ScheduleEntry),
		logger:  logger,
	}
}

// Upsert заменяет подписку пользователя. Одна запись на пользователя,
// последняя запись выигрывает.
func (r *Registry) Upsert(e model.ScheduleEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[e.UserID] = e
	r.logger.Info("Подписка сохранена",
		"user_id", e.UserID,
		"city", e.City,
		"time", formatTime(e.Hour, e.Minute))
}

// Remove удаляет подписку. Возвращает false, если подписки не было.
func (r *Registry) Remove(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[userID]; !ok {
		return false
	}
	delete(r.entries, userID)
	r.logger.Info("Подписка удалена", "user_id", userID)
	return true
}

// Snapshot возвращает копию всех подписок. Порядок не определен -
// каждая запись обрабатывается независимо.
func (r *Registry) Snapshot() []model.ScheduleEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.ScheduleEntry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	return out
}

// Count возвращает число подписок (для ops API).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func formatTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
