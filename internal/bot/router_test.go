package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/gometeo/bot/internal/model"
	"github.com/gometeo/bot/internal/schedule"
	"github.com/gometeo/bot/internal/weather"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFetcher отдает заранее заготовленные ответы по городам
type fakeFetcher struct {
	reports map[string]*model.WeatherReport
	err     error
	calls   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, city string) (*model.WeatherReport, error) {
	f.calls = append(f.calls, city)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.reports[city]; ok {
		return r, nil
	}
	return nil, &weather.ProviderError{Message: "No matching location found."}
}

func newTestRouter(fetcher Fetcher) (*Router, *schedule.Registry) {
	reg := schedule.NewRegistry(testLogger())
	return NewRouter(fetcher, reg, testLogger()), reg
}

func msg(text string) Incoming {
	return Incoming{Text: text, UserID: 7, ChatID: 70, FirstName: "Asha"}
}

func TestRouteStart(t *testing.T) {
	r, _ := newTestRouter(&fakeFetcher{})

	reply := r.Route(context.Background(), msg("/start"))
	if !strings.Contains(reply, "Hello Asha!") {
		t.Errorf("приветствие без имени отправителя: %q", reply)
	}
}

func TestRouteWeatherPrefix(t *testing.T) {
	f := &fakeFetcher{reports: map[string]*model.WeatherReport{
		"Bangalore": {City: "Bangalore", TempC: 28, Condition: "Sunny"},
	}}
	r, _ := newTestRouter(f)

	reply := r.Route(context.Background(), msg("Weather Bangalore"))
	if !strings.Contains(reply, "Bangalore") || !strings.Contains(reply, "28°C") {
		t.Errorf("ответ без города или температуры: %q", reply)
	}
	if len(f.calls) != 1 || f.calls[0] != "Bangalore" {
		t.Errorf("город передан провайдеру как %v", f.calls)
	}
}

func TestRouteProviderErrorVerbatim(t *testing.T) {
	r, _ := newTestRouter(&fakeFetcher{})

	reply := r.Route(context.Background(), msg("weather Nowhereville"))
	want := "Error: No matching location found."
	if reply != want {
		t.Errorf("Route() = %q, want %q", reply, want)
	}
}

func TestRouteTransportError(t *testing.T) {
	r, _ := newTestRouter(&fakeFetcher{err: errors.New("connection refused")})

	reply := r.Route(context.Background(), msg("weather Paris"))
	if reply != failedFetchReply {
		t.Errorf("Route() = %q, want %q", reply, failedFetchReply)
	}
}

func TestRoutePlainTextPrompts(t *testing.T) {
	f := &fakeFetcher{}
	r, _ := newTestRouter(f)

	for _, text := range []string{"", "   ", "hello there", "Bangalore"} {
		if reply := r.Route(context.Background(), msg(text)); reply != cityPromptReply {
			t.Errorf("Route(%q) = %q, ожидали подсказку", text, reply)
		}
	}
	if len(f.calls) != 0 {
		t.Errorf("провайдер не должен вызываться без интента weather: %v", f.calls)
	}
}

func TestRouteSetWeather(t *testing.T) {
	r, reg := newTestRouter(&fakeFetcher{})

	reply := r.Route(context.Background(), msg("/setweather 07:30 Paris"))
	if !strings.Contains(reply, "Paris") || !strings.Contains(reply, "07:30") {
		t.Errorf("подтверждение без города или времени: %q", reply)
	}

	snap := reg.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("ожидали одну подписку, получили %d", len(snap))
	}
	e := snap[0]
	if e.UserID != 7 || e.Hour != 7 || e.Minute != 30 || e.City != "Paris" {
		t.Errorf("подписка сохранена неверно: %+v", e)
	}

	// повторная команда заменяет, а не добавляет
	r.Route(context.Background(), msg("/setweather 09:00 Rome"))
	snap = reg.Snapshot()
	if len(snap) != 1 || snap[0].City != "Rome" || snap[0].Hour != 9 {
		t.Errorf("вторая команда не заменила подписку: %+v", snap)
	}
}

func TestRouteSetWeatherMultiWordCity(t *testing.T) {
	r, reg := newTestRouter(&fakeFetcher{})

	r.Route(context.Background(), msg("/setweather 06:15 New Delhi"))
	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].City != "New Delhi" {
		t.Errorf("составное название города потеряно: %+v", snap)
	}
}

func TestRouteSetWeatherBadFormat(t *testing.T) {
	r, reg := newTestRouter(&fakeFetcher{})

	// нет города, время вне диапазона, без ведущего нуля, не время вовсе
	bad := []string{
		"/setweather",
		"/setweather 07:30",
		"/setweather 25:99 Oslo",
		"/setweather 7:30 Oslo",
		"/setweather seven Oslo",
	}
	for _, text := range bad {
		reply := r.Route(context.Background(), msg(text))
		if reply != setUsageReply {
			t.Errorf("Route(%q) = %q, ожидали сообщение о формате", text, reply)
		}
	}
	if reg.Count() != 0 {
		t.Errorf("реестр должен остаться пустым, Count = %d", reg.Count())
	}
}

func TestRouteStopWeather(t *testing.T) {
	r, reg := newTestRouter(&fakeFetcher{})

	if reply := r.Route(context.Background(), msg("/stopweather")); reply != stopNoneReply {
		t.Errorf("без подписки ожидали %q, получили %q", stopNoneReply, reply)
	}

	r.Route(context.Background(), msg("/setweather 07:30 Paris"))
	if reply := r.Route(context.Background(), msg("/stopweather")); reply != stopDoneReply {
		t.Errorf("ожидали %q, получили %q", stopDoneReply, reply)
	}
	if reg.Count() != 0 {
		t.Errorf("подписка не удалена, Count = %d", reg.Count())
	}
}

func TestRouteCaseInsensitive(t *testing.T) {
	f := &fakeFetcher{reports: map[string]*model.WeatherReport{
		"delhi": {City: "Delhi", TempC: 31, Condition: "Sunny"},
	}}
	r, reg := newTestRouter(f)

	if reply := r.Route(context.Background(), msg("  WEATHER delhi  ")); !strings.Contains(reply, "Delhi") {
		t.Errorf("префикс weather должен матчиться без учета регистра: %q", reply)
	}

	r.Route(context.Background(), msg("/SETWEATHER 10:00 Oslo"))
	if reg.Count() != 1 {
		t.Error("команда в верхнем регистре не распознана")
	}
}
