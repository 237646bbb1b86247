package bot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vitatrack/internal/models"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Прогресс"

// exportToExcel создает Excel файл со сводкой по всем пользователям:
// анкета, цели и текущие счетчики.
func (b *Bot) exportToExcel(profiles []models.Profile) (string, error) {
	if err := os.MkdirAll(b.config.Exports.Path, 0755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"ID", "Город", "Вес (кг)", "Рост (см)", "Возраст", "Активность (мин)",
		"Цель воды (мл)", "Выпито (мл)", "Цель калорий", "Потреблено", "Сожжено", "Обновлено",
	}
	headerStyle, styleErr := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, h)
		if styleErr == nil {
			f.SetCellStyle(exportSheet, cell, cell, headerStyle)
		}
	}

	for i, p := range profiles {
		row := i + 2
		values := []interface{}{
			p.UserID,
			p.City,
			p.WeightKg,
			p.HeightCm,
			p.Age,
			p.ActivityMinutes,
			p.WaterGoalMl,
			p.LoggedWaterMl,
			p.CalorieGoalKcal,
			p.LoggedCalories,
			p.BurnedCalories,
			p.UpdatedAt.Format("02.01.2006 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
	}

	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("vitatrack_export_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(b.config.Exports.Path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	return filePath, nil
}
