package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"vitatrack/internal/clients"
	"vitatrack/internal/models"
	"vitatrack/internal/session"
)

const profileRequiredMsg = "Сначала настройте профиль через /set_profile"

func (b *Bot) handleStart(chatID int64) {
	b.sendText(chatID,
		"Привет! Я бот для трекинга воды и калорий.\n\n"+
			"📋 Меню:\n"+
			"/set_profile — Настройка профиля\n"+
			"/log_water <мл> — Записать воду\n"+
			"/log_food <продукт> — Записать еду\n"+
			"/log_workout <тип> <мин> — Записать тренировку\n"+
			"/check_progress — Посмотреть прогресс\n"+
			"/cancel — Отменить текущий сценарий")
}

func (b *Bot) handleLogWater(ctx context.Context, userID, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) < 2 {
		b.sendText(chatID, "Пример: /log_water 250")
		return
	}

	amount, err := strconv.Atoi(args[1])
	if err != nil || amount <= 0 {
		b.sendText(chatID, "Введите число (в мл).")
		return
	}

	res, err := b.tracker.LogWater(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, session.ErrProfileNotFound) {
			b.sendText(chatID, profileRequiredMsg)
			return
		}
		b.metrics.ErrorsTotal.Inc()
		b.logger.Printf("log water for %d: %v", userID, err)
		b.sendText(chatID, "Не получилось записать воду, попробуйте еще раз.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("💧 Записано: %d мл.\nВсего: %.0f / %.0f мл. (Осталось: %.0f мл)",
		res.AddedMl, res.TotalMl, res.GoalMl, res.RemainingMl))
}

func (b *Bot) handleLogFood(ctx context.Context, userID, chatID int64, text string) {
	if !b.tracker.HasProfile(userID) {
		b.sendText(chatID, profileRequiredMsg)
		return
	}

	args := strings.SplitN(text, " ", 2)
	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		b.sendText(chatID, "Пример: /log_food банан")
		return
	}
	query := strings.TrimSpace(args[1])

	// Поиск продукта идет до открытия сценария: шаг граммов работает
	// только с уже найденным продуктом.
	info, err := b.food.Search(ctx, query)
	if err != nil {
		b.metrics.LookupFailures.WithLabelValues("food").Inc()
		if !clients.IsNotFound(err) {
			b.logger.Printf("food lookup %q: %v", query, err)
		}
		b.sendText(chatID, "Продукт не найден.")
		return
	}

	b.send(chatID, b.engine.StartFoodGrams(userID, info.Name, info.KcalPer100g))
}

func (b *Bot) handleLogWorkout(ctx context.Context, userID, chatID int64, text string) {
	args := strings.Fields(text)
	if len(args) < 3 {
		b.sendText(chatID, "Пример: /log_workout бег 30")
		return
	}

	workoutType := args[1]
	minutes, err := strconv.Atoi(args[2])
	if err != nil || minutes <= 0 {
		b.sendText(chatID, "Время указывайте числом.")
		return
	}

	res, err := b.tracker.LogWorkout(ctx, userID, minutes)
	if err != nil {
		if errors.Is(err, session.ErrProfileNotFound) {
			b.sendText(chatID, profileRequiredMsg)
			return
		}
		b.metrics.ErrorsTotal.Inc()
		b.logger.Printf("log workout for %d: %v", userID, err)
		b.sendText(chatID, "Не получилось записать тренировку, попробуйте еще раз.")
		return
	}

	b.sendText(chatID, fmt.Sprintf("🏃‍♂️ %s (%d мин) — сожжено %.0f ккал.\nДополнительно выпейте %.0f мл воды.",
		workoutType, minutes, res.BurnedKcal, res.WaterBonusMl))
}

func (b *Bot) handleCheckProgress(userID, chatID int64) {
	snapshot, err := b.tracker.Snapshot(userID)
	if err != nil {
		if errors.Is(err, session.ErrProfileNotFound) {
			b.sendText(chatID, "Профиль не найден.")
			return
		}
		b.metrics.ErrorsTotal.Inc()
		b.logger.Printf("snapshot for %d: %v", userID, err)
		b.sendText(chatID, "Не получилось собрать прогресс, попробуйте еще раз.")
		return
	}

	b.send(chatID, models.Response{Text: "📊 Прогресс:", Snapshot: &snapshot})
}
