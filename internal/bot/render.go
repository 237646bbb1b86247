package bot

import (
	"fmt"
	"strings"

	"vitatrack/internal/models"
)

const barWidth = 10

// renderSnapshot раскладывает срез прогресса в текст со шкалами —
// текстовая замена графику.
func renderSnapshot(s *models.ProgressSnapshot) string {
	var sb strings.Builder

	sb.WriteString("💧 Вода:\n")
	sb.WriteString(fmt.Sprintf("%s\n", renderBar(s.WaterDrunkMl, s.WaterGoalMl)))
	sb.WriteString(fmt.Sprintf("- Выпито: %.0f / %.0f мл\n", s.WaterDrunkMl, s.WaterGoalMl))
	sb.WriteString(fmt.Sprintf("- Осталось: %.0f мл\n\n", s.WaterRemainingMl))

	sb.WriteString("🔥 Калории:\n")
	sb.WriteString(fmt.Sprintf("%s\n", renderBar(s.CalorieBalance, s.CalorieGoalKcal)))
	sb.WriteString(fmt.Sprintf("- Потреблено: %.0f ккал\n", s.CaloriesConsumed))
	sb.WriteString(fmt.Sprintf("- Сожжено: %.0f ккал\n", s.CaloriesBurned))
	sb.WriteString(fmt.Sprintf("- Баланс: %.0f / %.0f ккал", s.CalorieBalance, s.CalorieGoalKcal))

	return sb.String()
}

// renderBar рисует шкалу заполнения цели с процентом.
func renderBar(current, goal float64) string {
	if goal <= 0 {
		return "[" + strings.Repeat("░", barWidth) + "] 0%"
	}

	ratio := current / goal
	if ratio < 0 {
		ratio = 0
	}
	percent := int(ratio * 100)

	filled := int(ratio * barWidth)
	if filled > barWidth {
		filled = barWidth
	}

	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
		percent)
}
