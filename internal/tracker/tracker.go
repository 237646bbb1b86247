package tracker

import (
	"context"
	"math"

	"vitatrack/internal/events"
	"vitatrack/internal/models"
	"vitatrack/internal/session"
)

// Tracker применяет события логирования к счетчикам пользователя и строит
// срезы прогресса. Все операции требуют готового профиля и возвращают
// session.ErrProfileNotFound без него.
type Tracker struct {
	store *session.Store
	bus   *events.EventBus
}

func New(store *session.Store, bus *events.EventBus) *Tracker {
	return &Tracker{store: store, bus: bus}
}

// WaterResult — итог записи воды.
type WaterResult struct {
	AddedMl     int
	TotalMl     float64
	GoalMl      float64
	RemainingMl float64
}

// FoodResult — итог записи еды.
type FoodResult struct {
	Calories      float64
	TotalCalories float64
}

// WorkoutResult — итог записи тренировки.
type WorkoutResult struct {
	BurnedKcal   float64
	WaterBonusMl float64
}

// LogWater добавляет выпитую воду и возвращает прогресс по дневной норме.
func (t *Tracker) LogWater(ctx context.Context, userID int64, amountMl int) (WaterResult, error) {
	updated, err := t.store.UpdateProfile(ctx, userID, func(p *models.Profile) {
		p.LoggedWaterMl += float64(amountMl)
	})
	if err != nil {
		return WaterResult{}, err
	}

	t.publish(events.EventWaterLogged, userID)
	return WaterResult{
		AddedMl:     amountMl,
		TotalMl:     updated.LoggedWaterMl,
		GoalMl:      updated.WaterGoalMl,
		RemainingMl: math.Max(0, updated.WaterGoalMl-updated.LoggedWaterMl),
	}, nil
}

// LogFood добавляет потребленные калории.
func (t *Tracker) LogFood(ctx context.Context, userID int64, calories float64) (FoodResult, error) {
	updated, err := t.store.UpdateProfile(ctx, userID, func(p *models.Profile) {
		p.LoggedCalories += calories
	})
	if err != nil {
		return FoodResult{}, err
	}

	t.publish(events.EventFoodLogged, userID)
	return FoodResult{Calories: calories, TotalCalories: updated.LoggedCalories}, nil
}

// LogWorkout записывает тренировку: начисляет сожженные калории и
// безвозвратно поднимает дневную норму воды на бонус за нагрузку.
func (t *Tracker) LogWorkout(ctx context.Context, userID int64, minutes int) (WorkoutResult, error) {
	burned := WorkoutBurn(minutes)
	bonus := WorkoutWaterBonus(minutes)

	_, err := t.store.UpdateProfile(ctx, userID, func(p *models.Profile) {
		p.BurnedCalories += burned
		p.WaterGoalMl += bonus
	})
	if err != nil {
		return WorkoutResult{}, err
	}

	t.publish(events.EventWorkoutLogged, userID)
	return WorkoutResult{BurnedKcal: burned, WaterBonusMl: bonus}, nil
}

// HasProfile сообщает, завершил ли пользователь настройку профиля.
func (t *Tracker) HasProfile(userID int64) bool {
	_, ok := t.store.Profile(userID)
	return ok
}

// Snapshot строит срез прогресса без изменения состояния.
func (t *Tracker) Snapshot(userID int64) (models.ProgressSnapshot, error) {
	p, ok := t.store.Profile(userID)
	if !ok {
		return models.ProgressSnapshot{}, session.ErrProfileNotFound
	}
	return models.ProgressSnapshot{
		WaterDrunkMl:     p.LoggedWaterMl,
		WaterGoalMl:      p.WaterGoalMl,
		WaterRemainingMl: math.Max(0, p.WaterGoalMl-p.LoggedWaterMl),
		CaloriesConsumed: p.LoggedCalories,
		CaloriesBurned:   p.BurnedCalories,
		CalorieBalance:   p.LoggedCalories - p.BurnedCalories,
		CalorieGoalKcal:  p.CalorieGoalKcal,
	}, nil
}

func (t *Tracker) publish(eventType string, userID int64) {
	if t.bus == nil {
		return
	}
	t.bus.PublishProgress(eventType, userID)
}
