package models

// Сценарии многошагового диалога.
const (
	FlowProfileSetup = "profile_setup"
	FlowFoodGrams    = "food_grams"
)

// UserState описывает открытый диалог пользователя: какой сценарий идет,
// какой шаг ожидается следующим и что уже собрано.
type UserState struct {
	UserID      int64             `json:"user_id"`
	Flow        string            `json:"flow"`
	CurrentStep string            `json:"current_step"`
	Data        map[string]string `json:"data"`
}

// ProgressSnapshot — срез прогресса пользователя на момент запроса.
type ProgressSnapshot struct {
	WaterDrunkMl     float64 `json:"water_drunk_ml"`
	WaterGoalMl      float64 `json:"water_goal_ml"`
	WaterRemainingMl float64 `json:"water_remaining_ml"`

	CaloriesConsumed float64 `json:"calories_consumed"`
	CaloriesBurned   float64 `json:"calories_burned"`
	CalorieBalance   float64 `json:"calorie_balance"`
	CalorieGoalKcal  float64 `json:"calorie_goal_kcal"`
}

// Response — исходящий ответ ядра транспортному слою: текст и, опционально,
// снимок прогресса для отрисовки.
type Response struct {
	Text     string
	Snapshot *ProgressSnapshot
}
