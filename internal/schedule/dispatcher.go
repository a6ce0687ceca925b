package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// часы суток (включительно), в которые разрешена общая рассылка
const (
	broadcastFromHour = 8
	broadcastToHour   = 20
)

const broadcastText = "Good day! ☀️ Don't forget to check the weather before heading out. " +
	"Send 'weather <city>' any time to get the latest conditions."

// Sender отправляет текст в чат. Реализуется телеграм-шлюзом.
type Sender interface {
	Send(chatID int64, text string) error
}

// Reporter выполняет полный цикл запрос погоды -> текст ответа.
type Reporter interface {
	WeatherReply(ctx context.Context, city string) string
}

// Dispatcher - фоновый диспетчер рассылок. Вместо пересоздания задач
// на каждое изменение реестра тикает раз в минуту и сравнивает время
// каждой подписки с текущим временем в настроенной зоне.
type Dispatcher struct {
	registry *Registry
	reporter Reporter
	sender   Sender
	loc      *time.Location
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time // подменяется в тестах
}

func NewDispatcher(registry *Registry, reporter Reporter, sender Sender, loc *time.Location, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		reporter: reporter,
		sender:   sender,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start регистрирует обе периодики и запускает планировщик:
// поминутная проверка подписок и общая рассылка раз в 4 часа.
func (d *Dispatcher) Start() error {
	d.cron = cron.New(cron.WithLocation(d.loc))

	if _, err := d.cron.AddFunc("* * * * *", d.dispatchTick); err != nil {
		return fmt.Errorf("ошибка регистрации поминутной задачи: %w", err)
	}
	if _, err := d.cron.AddFunc("0 */4 * * *", d.broadcastTick); err != nil {
		return fmt.Errorf("ошибка регистрации рассылки: %w", err)
	}

	d.cron.Start()
	d.logger.Info("Планировщик запущен", "timezone", d.loc.String())
	return nil
}

// Stop останавливает планировщик и ждет завершения текущих задач.
func (d *Dispatcher) Stop() {
	if d.cron == nil {
		return
	}
	<-d.cron.Stop().Done()
	d.logger.Info("Планировщик остановлен")
}

// dispatchTick отправляет погоду всем, чье время совпало с текущей минутой.
// Снимок берется один раз: параллельное изменение реестра может попасть
// в этот цикл, а может и не попасть - это допустимая гонка.
func (d *Dispatcher) dispatchTick() {
	now := d.now().In(d.loc)

	for _, e := range d.registry.Snapshot() {
		if e.Hour != now.Hour() || e.Minute != now.Minute() {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		reply := d.reporter.WeatherReply(ctx, e.City)
		cancel()

		if err := d.sender.Send(e.ChatID, reply); err != nil {
			d.logger.Error("Не удалось отправить рассылку",
				"user_id", e.UserID, "city", e.City, "error", err)
			continue
		}
		d.logger.Info("Рассылка отправлена", "user_id", e.UserID, "city", e.City)
	}
}

// broadcastTick шлет общее приветствие всем подписчикам, но только
// в дневное окно. Вне окна тик просто пропускается, без переноса.
func (d *Dispatcher) broadcastTick() {
	now := d.now().In(d.loc)
	hour := now.Hour()

	if hour < broadcastFromHour || hour > broadcastToHour {
		d.logger.Info("Пропускаем рассылку: вне дневного окна", "hour", hour)
		return
	}

	for _, e := range d.registry.Snapshot() {
		if err := d.sender.Send(e.ChatID, broadcastText); err != nil {
			d.logger.Error("Не удалось отправить приветствие",
				"user_id", e.UserID, "error", err)
		}
	}
}
