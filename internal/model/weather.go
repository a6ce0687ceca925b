package model

// WeatherReport - нормализованный ответ погодного провайдера.
// Либо заполнены все три поля, либо вызов вернул ошибку - третьего не дано.
type WeatherReport struct {
	City      string  `json:"city"`
	TempC     float64 `json:"temperature"`
	Condition string  `json:"condition"`
}

// ScheduleEntry - ежедневная подписка пользователя на рассылку погоды.
// Живет только в памяти: при рестарте процесса все подписки теряются.
type ScheduleEntry struct {
	UserID int64  `json:"user_id"`
	ChatID int64  `json:"chat_id"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	City   string `json:"city"`
}

// HealthResponse - ответ эндпоинта /health
type HealthResponse struct {
	Status        string `json:"status"`
	Time          string `json:"time"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// SchedulesResponse - ответ эндпоинта /schedules
type SchedulesResponse struct {
	Registered int `json:"registered"`
}
