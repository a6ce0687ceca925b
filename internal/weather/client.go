package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gometeo/bot/internal/model"
)

const defaultBaseURL = "https://api.weatherapi.com/v1"

// ProviderError - ошибка уровня провайдера (например, неизвестный город).
// Провайдер может вернуть HTTP 200 с полем error в теле.
type ProviderError struct {
	Message string
}

func (e *ProviderError) Error() string {
	return "weatherapi: " + e.Message
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New создает клиент weatherapi.com с явным таймаутом.
// Без таймаута зависший провайдер заблокировал бы обработку сообщений.
func New(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// ответ провайдера: location/current при успехе, error при ошибке
type apiResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch запрашивает текущую погоду по названию города.
// Никаких повторов и кэша: каждый вызов - свежий запрос к провайдеру.
func (c *Client) Fetch(ctx context.Context, city string) (*model.WeatherReport, error) {
	reqURL := fmt.Sprintf("%s/current.json?key=%s&q=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(city))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса к провайдеру: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("провайдер вернул статус %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	if body.Error != nil {
		c.logger.Debug("Провайдер вернул ошибку", "city", city, "message", body.Error.Message)
		return nil, &ProviderError{Message: body.Error.Message}
	}

	c.logger.Debug("Погода получена",
		"city", body.Location.Name,
		"temp", body.Current.TempC,
		"duration_ms", time.Since(start).Milliseconds())

	return &model.WeatherReport{
		City:      body.Location.Name,
		TempC:     body.Current.TempC,
		Condition: body.Current.Condition.Text,
	}, nil
}
