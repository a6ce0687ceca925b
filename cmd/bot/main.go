package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/gometeo/bot/internal/api/handlers"
	"github.com/gometeo/bot/internal/bot"
	"github.com/gometeo/bot/internal/config"
	"github.com/gometeo/bot/internal/schedule"
	"github.com/gometeo/bot/internal/weather"
)

func main() {
	// .env необязателен: в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка конфигурации", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Запуск Weather Bot...")
	logger.Info("Конфигурация загружена",
		"timezone", cfg.Timezone,
		"http_port", cfg.HTTPPort,
		"weather_timeout", cfg.WeatherTimeout)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("Неизвестная временная зона", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// 1. Сборка компонентов
	weatherClient := weather.New(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger)
	registry := schedule.NewRegistry(logger)
	router := bot.NewRouter(weatherClient, registry, logger)

	tgBot, err := bot.New(cfg.TelegramToken, router, logger)
	if err != nil {
		logger.Error("Не удалось запустить бота", "error", err)
		os.Exit(1)
	}

	// 2. Фоновый диспетчер рассылок
	dispatcher := schedule.NewDispatcher(registry, router, tgBot, loc, logger)
	if err := dispatcher.Start(); err != nil {
		logger.Error("Не удалось запустить планировщик", "error", err)
		os.Exit(1)
	}

	// 3. Ops API
	opsHandler := handlers.NewOpsHandler(registry, logger)

	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", opsHandler.HealthCheck).Methods("GET")
	api.HandleFunc("/schedules", opsHandler.Schedules).Methods("GET")
	r.Use(loggingMiddleware(logger))

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Ops API запущен", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ошибка HTTP сервера", "error", err)
		}
	}()

	// 4. Цикл опроса Telegram
	ctx, cancel := context.WithCancel(context.Background())
	go tgBot.Run(ctx)

	// 5. Graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)
	<-stopChan
	logger.Info("Получен сигнал завершения...")

	cancel()
	dispatcher.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при остановке HTTP сервера", "error", err)
	}

	logger.Info("Бот остановлен")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)

	// Для продакшена используем JSON формат
	if cfg.Env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

// Middleware для логирования
func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(rw, r)

			logger.Info("HTTP запрос",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// Кастомный ResponseWriter для отслеживания статуса
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
