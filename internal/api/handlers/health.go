package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gometeo/bot/internal/model"
	"github.com/gometeo/bot/internal/schedule"
)

type OpsHandler struct {
	registry  *schedule.Registry
	startedAt time.Time
	logger    *slog.Logger
}

func NewOpsHandler(registry *schedule.Registry, logger *slog.Logger) *OpsHandler {
	return &OpsHandler{
		registry:  registry,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// HealthCheck возвращает статус процесса и аптайм.
// Внешних зависимостей, которые можно было бы проверить, у бота нет:
// Telegram и погодный провайдер опрашиваются только по запросу.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, model.HealthResponse{
		Status:        "ok",
		Time:          time.Now().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// Schedules возвращает число зарегистрированных подписок.
func (h *OpsHandler) Schedules(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, model.SchedulesResponse{
		Registered: h.registry.Count(),
	})
}

// Вспомогательные функции
func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
