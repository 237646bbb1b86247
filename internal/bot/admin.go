package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// handleAdminCommand обрабатывает команды администратора. Возвращает true,
// если сообщение было админской командой.
func (b *Bot) handleAdminCommand(update tgbotapi.Update) bool {
	if !b.isAdmin(update.Message.From.ID) {
		return false
	}

	text := strings.TrimSpace(update.Message.Text)
	chatID := update.Message.Chat.ID

	switch {
	// секретные команды, доступные администраторам, но не отображаемые в меню
	case text == "/stats":
		b.showStats(chatID)
		return true

	case text == "/export":
		b.handleExport(update)
		return true
	}

	return false
}

func (b *Bot) isAdmin(userID int64) bool {
	for _, id := range b.config.Admins {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) showStats(chatID int64) {
	profiles := b.store.Profiles()

	var water, calories, burned float64
	for _, p := range profiles {
		water += p.LoggedWaterMl
		calories += p.LoggedCalories
		burned += p.BurnedCalories
	}

	b.sendText(chatID, fmt.Sprintf(
		"📈 Статистика:\n\n"+
			"👤 Профилей: %d\n"+
			"💧 Воды записано: %.0f мл\n"+
			"🍎 Калорий записано: %.0f ккал\n"+
			"🔥 Калорий сожжено: %.0f ккал",
		len(profiles), water, calories, burned))
}

// handleExport выгружает сводку по всем пользователям в Excel и отправляет
// файл администратору.
func (b *Bot) handleExport(update tgbotapi.Update) {
	chatID := update.Message.Chat.ID

	filePath, err := b.exportToExcel(b.store.Profiles())
	if err != nil {
		b.logger.Printf("Error exporting to Excel: %v", err)
		b.sendText(chatID, "Ошибка при создании файла экспорта")
		return
	}

	file, err := os.Open(filePath)
	if err != nil {
		b.logger.Printf("Error opening file: %v", err)
		b.sendText(chatID, "Ошибка при открытии файла")
		return
	}
	defer file.Close()

	fileReader := tgbotapi.FileReader{
		Name:   filepath.Base(filePath),
		Reader: file,
	}

	doc := tgbotapi.NewDocument(chatID, fileReader)
	doc.Caption = fmt.Sprintf("📊 Сводка по пользователям на %s", time.Now().Format("02.01.2006 15:04"))

	if _, err := b.bot.Send(doc); err != nil {
		b.logger.Printf("Error sending document: %v", err)
		b.sendText(chatID, "Ошибка при отправке файла")
	}
}
