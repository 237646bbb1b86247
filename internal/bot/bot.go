package bot

import (
	"context"
	"log"

	"vitatrack/internal/clients"
	"vitatrack/internal/config"
	"vitatrack/internal/conversation"
	"vitatrack/internal/models"
	"vitatrack/internal/session"
	"vitatrack/internal/tracker"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FoodProvider — внешний справочник продуктов.
type FoodProvider interface {
	Search(ctx context.Context, query string) (clients.FoodInfo, error)
}

type Bot struct {
	bot     *tgbotapi.BotAPI
	config  *config.Config
	engine  *conversation.Engine
	tracker *tracker.Tracker
	store   *session.Store
	food    FoodProvider
	metrics *Metrics
	logger  *log.Logger
}

func NewBot(token string, cfg *config.Config, engine *conversation.Engine, trk *tracker.Tracker, store *session.Store, food FoodProvider, metrics *Metrics, logger *log.Logger) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	botAPI.Debug = cfg.Telegram.Debug

	if logger == nil {
		logger = log.Default()
	}

	return &Bot{
		bot:     botAPI,
		config:  cfg,
		engine:  engine,
		tracker: trk,
		store:   store,
		food:    food,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Start регистрирует меню команд и крутит long polling до Stop.
func (b *Bot) Start() {
	b.setCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)

	b.logger.Printf("Authorized on account %s", b.bot.Self.UserName)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(update)
	}
}

func (b *Bot) Stop() {
	b.bot.StopReceivingUpdates()
}

// setCommands публикует подсказки меню в клиенте Telegram.
func (b *Bot) setCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать работу"},
		tgbotapi.BotCommand{Command: "set_profile", Description: "Настроить профиль"},
		tgbotapi.BotCommand{Command: "log_water", Description: "Записать воду"},
		tgbotapi.BotCommand{Command: "log_food", Description: "Записать еду"},
		tgbotapi.BotCommand{Command: "log_workout", Description: "Записать тренировку"},
		tgbotapi.BotCommand{Command: "check_progress", Description: "Посмотреть прогресс"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Отменить текущий сценарий"},
	)
	if _, err := b.bot.Request(commands); err != nil {
		b.logger.Printf("set commands: %v", err)
	}
}

// send доставляет ответ ядра: текст и, если есть, отрисованный срез
// прогресса. Пикселей бот не рисует — график заменяют текстовые шкалы.
func (b *Bot) send(chatID int64, resp models.Response) {
	text := resp.Text
	if resp.Snapshot != nil {
		text += "\n\n" + renderSnapshot(resp.Snapshot)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.bot.Send(msg); err != nil {
		b.metrics.ErrorsTotal.Inc()
		b.logger.Printf("send to %d: %v", chatID, err)
	}
}

func (b *Bot) sendText(chatID int64, text string) {
	b.send(chatID, models.Response{Text: text})
}
