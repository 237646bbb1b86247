package bot

import (
	"strings"
	"testing"

	"vitatrack/internal/models"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		goal    float64
		want    string
	}{
		{"пусто", 0, 2600, "[░░░░░░░░░░] 0%"},
		{"половина", 1300, 2600, "[█████░░░░░] 50%"},
		{"полная", 2600, 2600, "[██████████] 100%"},
		{"перебор", 3000, 2600, "[██████████] 115%"},
		{"отрицательный баланс", -200, 2000, "[░░░░░░░░░░] 0%"},
		{"нулевая цель", 500, 0, "[░░░░░░░░░░] 0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderBar(tt.current, tt.goal); got != tt.want {
				t.Errorf("renderBar(%v, %v) = %q, want %q", tt.current, tt.goal, got, tt.want)
			}
		})
	}
}

func TestRenderSnapshot(t *testing.T) {
	snap := &models.ProgressSnapshot{
		WaterDrunkMl:     500,
		WaterGoalMl:      2600,
		WaterRemainingMl: 2100,
		CaloriesConsumed: 800,
		CaloriesBurned:   300,
		CalorieBalance:   500,
		CalorieGoalKcal:  2044,
	}

	out := renderSnapshot(snap)

	for _, want := range []string{
		"Выпито: 500 / 2600 мл",
		"Осталось: 2100 мл",
		"Потреблено: 800 ккал",
		"Сожжено: 300 ккал",
		"Баланс: 500 / 2044 ккал",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("вывод без %q:\n%s", want, out)
		}
	}
}
