package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const crashedReply = "Something went wrong while handling your message. Please try again."

// Bot - шлюз к Telegram: длинный опрос обновлений и отправка ответов.
// Сообщения обрабатываются последовательно, одно за другим.
type Bot struct {
	api    *tgbotapi.BotAPI
	router *Router
	logger *slog.Logger
}

func New(token string, router *Router, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к Telegram: %w", err)
	}

	logger.Info("Бот авторизован", "username", api.Self.UserName)

	return &Bot{
		api:    api,
		router: router,
		logger: logger,
	}, nil
}

// Run крутит цикл опроса до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30

	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("Бот запущен, ждем сообщения...")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Цикл опроса остановлен")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			m := update.Message
			handleIncoming(ctx, b.router, b.Send, Incoming{
				Text:      m.Text,
				UserID:    m.From.ID,
				ChatID:    m.Chat.ID,
				FirstName: m.From.FirstName,
			}, b.logger)
		}
	}
}

// handleIncoming обрабатывает одно сообщение внутри границы отказа:
// паника в обработчике логируется и не валит цикл опроса.
// Отправка вынесена в параметр, чтобы границу можно было проверить
// без живого подключения к Telegram.
func handleIncoming(ctx context.Context, router *Router, send func(chatID int64, text string) error, msg Incoming, logger *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Паника в обработчике сообщения",
				"chat_id", msg.ChatID, "panic", rec)

			// отправка может упасть сама - эту панику тоже гасим
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Паника при отправке ответа об ошибке",
						"chat_id", msg.ChatID, "panic", rec)
				}
			}()
			if err := send(msg.ChatID, crashedReply); err != nil {
				logger.Error("Не удалось отправить ответ об ошибке",
					"chat_id", msg.ChatID, "error", err)
			}
		}
	}()

	reply := router.Route(ctx, msg)
	if err := send(msg.ChatID, reply); err != nil {
		logger.Error("Не удалось отправить ответ", "chat_id", msg.ChatID, "error", err)
	}
}

// Send отправляет текст в чат. Реализует schedule.Sender.
func (b *Bot) Send(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
