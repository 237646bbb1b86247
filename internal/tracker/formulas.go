package tracker

import "math"

// Формулы целей. Все функции чистые и детерминированные; валидация входа
// лежит на вызывающем (движок диалога пропускает только числа).

// WaterGoal считает дневную норму воды в мл: 30 мл на кг веса плюс 500 мл
// за каждые полные 30 минут активности. hasTemp/tempC — погода города,
// если она была доступна: жара выше 25°C добавляет 500 мл.
func WaterGoal(weightKg float64, activityMinutes int, tempC float64, hasTemp bool) float64 {
	goal := weightKg*30 + 500*math.Floor(float64(activityMinutes)/30)
	if hasTemp && tempC > 25 {
		goal += 500
	}
	return goal
}

// CalorieGoal считает дневную норму калорий: упрощенная формула
// Миффлина-Сан Жеора плюс 200 ккал при активности больше 30 минут.
func CalorieGoal(weightKg, heightCm float64, age, activityMinutes int) float64 {
	goal := 10*weightKg + 6.25*heightCm - 5*float64(age) + 200
	if activityMinutes > 30 {
		goal += 200
	}
	return goal
}

// WorkoutBurn — сожженные калории: плоская ставка 10 ккал в минуту,
// без различия типов тренировок.
func WorkoutBurn(minutes int) float64 {
	return float64(minutes) * 10
}

// WorkoutWaterBonus — дополнительная вода за тренировку: 200 мл за каждые
// полные 30 минут.
func WorkoutWaterBonus(minutes int) float64 {
	return math.Floor(float64(minutes)/30) * 200
}
