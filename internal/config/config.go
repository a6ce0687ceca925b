package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	TelegramToken  string        `env:"TELEGRAM_BOT_TOKEN,required"`
	WeatherAPIKey  string        `env:"WEATHER_API_KEY,required"`
	WeatherTimeout time.Duration `env:"WEATHER_TIMEOUT" envDefault:"10s"`
	Timezone       string        `env:"TIMEZONE" envDefault:"Asia/Kolkata"`
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load читает конфигурацию из переменных окружения.
// Токены обязательны - без них боту нечего делать.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	}
	return cfg, nil
}
