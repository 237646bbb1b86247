package models

import "time"

// SchemaVersion помечает формат сериализованной записи пользователя.
const SchemaVersion = 1

// Profile хранит анкету пользователя вместе с дневными счетчиками.
// Создается только после полного прохождения настройки профиля.
type Profile struct {
	Schema          int       `json:"schema"`
	UserID          int64     `json:"user_id"`
	WeightKg        float64   `json:"weight_kg"`
	HeightCm        float64   `json:"height_cm"`
	Age             int       `json:"age"`
	ActivityMinutes int       `json:"activity_minutes"`
	City            string    `json:"city"`

	WaterGoalMl     float64 `json:"water_goal_ml"`
	CalorieGoalKcal float64 `json:"calorie_goal_kcal"`

	LoggedWaterMl  float64 `json:"logged_water_ml"`
	LoggedCalories float64 `json:"logged_calories"`
	BurnedCalories float64 `json:"burned_calories"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
