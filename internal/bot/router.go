package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/gometeo/bot/internal/format"
	"github.com/gometeo/bot/internal/model"
	"github.com/gometeo/bot/internal/schedule"
	"github.com/gometeo/bot/internal/weather"
)

const (
	failedFetchReply = "Failed to retrieve weather data. Please try again later."
	cityPromptReply  = "Please send me a city name, e.g. 'weather London'."
	setUsageReply    = "Invalid format. Use: /setweather HH:MM City\nExample: /setweather 07:30 Paris"
	stopDoneReply    = "Daily weather updates stopped."
	stopNoneReply    = "You have no daily weather updates set up."
)

const welcomeTemplate = "Hello %s! 🌞\n\n" +
	"Welcome to our weather bot, created by a team of passionate engineering students from DSCE. " +
	"Whether you're planning a picnic, checking on your travel destinations, or simply curious about the weather, I'm here to help!\n\n" +
	"Just type the name of any city or 'weather' followed by the city name to get started. For example:\n" +
	"• 'weather Bangalore'\n" +
	"• 'weather Delhi'\n\n" +
	"You can also get a daily update with /setweather HH:MM City.\n\n" +
	"Let's dive into the world of weather! 🌍☀️🌧️❄️"

// строго 24-часовой формат с ведущими нулями, "7:30" и "25:99" не проходят
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Fetcher запрашивает погоду по городу.
type Fetcher interface {
	Fetch(ctx context.Context, city string) (*model.WeatherReport, error)
}

// Incoming - входящее сообщение чата в отвязанном от транспорта виде.
type Incoming struct {
	Text      string
	UserID    int64
	ChatID    int64
	FirstName string
}

// Router разбирает текст сообщения на один из известных интентов
// и возвращает ровно один ответ. Состояния не держит.
type Router struct {
	weather  Fetcher
	registry *schedule.Registry
	logger   *slog.Logger
}

func NewRouter(weather Fetcher, registry *schedule.Registry, logger *slog.Logger) *Router {
	return &Router{
		weather:  weather,
		registry: registry,
		logger:   logger,
	}
}

// Route возвращает текст ответа на входящее сообщение.
// Сопоставление без учета регистра, пробелы по краям обрезаются.
func (r *Router) Route(ctx context.Context, msg Incoming) string {
	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	switch {
	case text == "":
		return cityPromptReply
	case lower == "/start":
		return fmt.Sprintf(welcomeTemplate, msg.FirstName)
	case lower == "/setweather" || strings.HasPrefix(lower, "/setweather "):
		return r.handleSetWeather(text, msg)
	case lower == "/stopweather":
		return r.handleStopWeather(msg)
	case strings.HasPrefix(lower, "weather "):
		city := strings.TrimSpace(text[len("weather "):])
		if city == "" {
			return cityPromptReply
		}
		return r.WeatherReply(ctx, city)
	default:
		return cityPromptReply
	}
}

// WeatherReply выполняет полный цикл запрос -> форматирование.
// Ошибка провайдера уходит пользователю как есть, транспортная -
// общим сообщением "попробуйте позже". Используется и роутером,
// и фоновым диспетчером.
func (r *Router) WeatherReply(ctx context.Context, city string) string {
	report, err := r.weather.Fetch(ctx, city)

	var perr *weather.ProviderError
	switch {
	case errors.As(err, &perr):
		return "Error: " + perr.Message
	case err != nil:
		r.logger.Error("Ошибка запроса погоды", "city", city, "error", err)
		return failedFetchReply
	default:
		return format.Report(report)
	}
}

// handleSetWeather разбирает "/setweather HH:MM City...".
// При любой ошибке формата реестр остается нетронутым.
func (r *Router) handleSetWeather(text string, msg Incoming) string {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		return setUsageReply
	}

	m := timePattern.FindStringSubmatch(parts[1])
	if m == nil {
		return setUsageReply
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	city := strings.Join(parts[2:], " ")

	r.registry.Upsert(model.ScheduleEntry{
		UserID: msg.UserID,
		ChatID: msg.ChatID,
		Hour:   hour,
		Minute: minute,
		City:   city,
	})

	return fmt.Sprintf("Done! I will send you the weather for %s every day at %02d:%02d.", city, hour, minute)
}

func (r *Router) handleStopWeather(msg Incoming) string {
	if r.registry.Remove(msg.UserID) {
		return stopDoneReply
	}
	return stopNoneReply
}
