package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleMessage(update tgbotapi.Update) {
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	start := time.Now()
	command := ""
	b.metrics.MessagesProcessed.Inc()
	defer func() {
		b.metrics.UpdateProcessingTime.Observe(time.Since(start).Seconds())
		if command != "" {
			b.metrics.CommandsProcessed.Inc()
			b.metrics.CommandDuration.WithLabelValues(command).Observe(time.Since(start).Seconds())
		}
	}()

	ctx := context.Background()

	switch {
	// Отмена — единственная команда, которую транспорт перехватывает
	// поверх открытого сценария. Остальной ввод при открытом сценарии
	// уходит движку как очередное значение поля.
	case text == "/cancel" || strings.ToLower(text) == "сброс" || strings.ToLower(text) == "reset":
		command = "cancel"
		if b.engine.Cancel(userID) {
			b.sendText(chatID, "Сценарий отменен.")
		} else {
			b.sendText(chatID, "Нечего отменять.")
		}

	case b.handleAdminCommand(update):
		command = "admin"

	case b.engine.Active(userID):
		b.send(chatID, b.engine.HandleInput(ctx, userID, text))

	case text == "/start":
		command = "start"
		b.handleStart(chatID)

	case text == "/set_profile" || strings.HasPrefix(text, "/set_profile "):
		command = "set_profile"
		b.send(chatID, b.engine.StartProfileSetup(userID))

	case text == "/log_water" || strings.HasPrefix(text, "/log_water "):
		command = "log_water"
		b.handleLogWater(ctx, userID, chatID, text)

	case text == "/log_food" || strings.HasPrefix(text, "/log_food "):
		command = "log_food"
		b.handleLogFood(ctx, userID, chatID, text)

	case text == "/log_workout" || strings.HasPrefix(text, "/log_workout "):
		command = "log_workout"
		b.handleLogWorkout(ctx, userID, chatID, text)

	case text == "/check_progress":
		command = "check_progress"
		b.handleCheckProgress(userID, chatID)

	default:
		b.sendText(chatID, "Не понимаю. Посмотрите список команд: /start")
	}
}
