package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"vitatrack/internal/events"
	"vitatrack/internal/models"
	"vitatrack/internal/session"
	"vitatrack/internal/tracker"
)

// Шаги сценария настройки профиля и ввода граммовки.
const (
	StepWeight   = "weight"
	StepHeight   = "height"
	StepAge      = "age"
	StepActivity = "activity"
	StepCity     = "city"
	StepGrams    = "grams"
)

// Ключи собранных значений в контексте диалога.
const (
	dataWeight   = "weight"
	dataHeight   = "height"
	dataAge      = "age"
	dataActivity = "activity"
	dataFoodName = "food_name"
	dataKcal100g = "kcal_100g"
)

// WeatherProvider — внешний справочник погоды. Любая ошибка означает
// "скорректировать норму по погоде не получилось", не более того.
type WeatherProvider interface {
	CurrentTemp(ctx context.Context, city string) (float64, error)
}

// Engine ведет пользователя по многошаговым сценариям: строго вперед,
// по одному полю за шаг. Невалидный ввод оставляет пользователя на том же
// шаге и повторяет вопрос; команда, присланная посреди сценария,
// потребляется как очередное значение поля.
type Engine struct {
	store   *session.Store
	tracker *tracker.Tracker
	weather WeatherProvider
	bus     *events.EventBus
	logger  *log.Logger

	weatherTimeout time.Duration
}

func NewEngine(store *session.Store, trk *tracker.Tracker, weather WeatherProvider, bus *events.EventBus, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:          store,
		tracker:        trk,
		weather:        weather,
		bus:            bus,
		logger:         logger,
		weatherTimeout: 5 * time.Second,
	}
}

// Active сообщает, открыт ли у пользователя диалог.
func (e *Engine) Active(userID int64) bool {
	return e.store.State(userID) != nil
}

// Cancel закрывает открытый диалог. Возвращает false, если закрывать нечего.
func (e *Engine) Cancel(userID int64) bool {
	if e.store.State(userID) == nil {
		return false
	}
	e.store.ClearState(userID)
	return true
}

// StartProfileSetup открывает сценарий настройки профиля с первого шага.
// Уже открытый диалог любого сценария перезапускается заново.
func (e *Engine) StartProfileSetup(userID int64) models.Response {
	e.store.SetState(userID, models.FlowProfileSetup, StepWeight, nil)
	return models.Response{Text: "Введите ваш вес (в кг):"}
}

// StartFoodGrams открывает ввод граммовки уже найденного продукта.
// Имя и калорийность кладутся в контекст, чтобы шаг граммов не ходил
// в справочник повторно.
func (e *Engine) StartFoodGrams(userID int64, name string, kcalPer100g float64) models.Response {
	data := map[string]string{
		dataFoodName: name,
		dataKcal100g: strconv.FormatFloat(kcalPer100g, 'f', -1, 64),
	}
	e.store.SetState(userID, models.FlowFoodGrams, StepGrams, data)
	return models.Response{
		Text: fmt.Sprintf("🍎 %s: %s ккал/100г. Сколько грамм?", name, formatNumber(kcalPer100g)),
	}
}

// HandleInput скармливает очередное сообщение открытому диалогу.
// Без открытого диалога возвращает подсказку.
func (e *Engine) HandleInput(ctx context.Context, userID int64, text string) models.Response {
	state := e.store.State(userID)
	if state == nil {
		return models.Response{Text: "Нет активного сценария. Начните с /set_profile или /log_food."}
	}

	switch state.Flow {
	case models.FlowProfileSetup:
		return e.handleProfileStep(ctx, state, text)
	case models.FlowFoodGrams:
		return e.handleGramsStep(ctx, state, text)
	default:
		// Неизвестный сценарий в хранилище лечится только сбросом.
		e.store.ClearState(userID)
		return models.Response{Text: "Сценарий прерван. Начните заново."}
	}
}

func (e *Engine) handleProfileStep(ctx context.Context, state *models.UserState, text string) models.Response {
	input := strings.TrimSpace(text)

	switch state.CurrentStep {
	case StepWeight:
		v, err := parsePositiveFloat(input)
		if err != nil {
			return models.Response{Text: "Введите число."}
		}
		state.Data[dataWeight] = strconv.FormatFloat(v, 'f', -1, 64)
		e.store.SetState(state.UserID, state.Flow, StepHeight, state.Data)
		return models.Response{Text: "Введите ваш рост (в см):"}

	case StepHeight:
		v, err := parsePositiveFloat(input)
		if err != nil {
			return models.Response{Text: "Введите число."}
		}
		state.Data[dataHeight] = strconv.FormatFloat(v, 'f', -1, 64)
		e.store.SetState(state.UserID, state.Flow, StepAge, state.Data)
		return models.Response{Text: "Введите ваш возраст:"}

	case StepAge:
		v, err := parsePositiveInt(input)
		if err != nil {
			return models.Response{Text: "Введите целое число."}
		}
		state.Data[dataAge] = strconv.Itoa(v)
		e.store.SetState(state.UserID, state.Flow, StepActivity, state.Data)
		return models.Response{Text: "Сколько минут активности у вас в день?"}

	case StepActivity:
		v, err := parseNonNegativeInt(input)
		if err != nil {
			return models.Response{Text: "Введите число."}
		}
		state.Data[dataActivity] = strconv.Itoa(v)
		e.store.SetState(state.UserID, state.Flow, StepCity, state.Data)
		return models.Response{Text: "В каком городе вы находитесь?"}

	case StepCity:
		if input == "" {
			return models.Response{Text: "Введите название города."}
		}
		return e.completeProfile(ctx, state, input)

	default:
		e.store.ClearState(state.UserID)
		return models.Response{Text: "Сценарий прерван. Начните заново с /set_profile."}
	}
}

// completeProfile — терминальный шаг: погода, расчет целей, запись профиля,
// закрытие диалога. Справочник погоды опрашивается до обращения к
// хранилищу, чтобы сетевое ожидание не попадало под замок пользователя.
func (e *Engine) completeProfile(ctx context.Context, state *models.UserState, city string) models.Response {
	weight, _ := strconv.ParseFloat(state.Data[dataWeight], 64)
	height, _ := strconv.ParseFloat(state.Data[dataHeight], 64)
	age, _ := strconv.Atoi(state.Data[dataAge])
	activity, _ := strconv.Atoi(state.Data[dataActivity])

	tempC, hasTemp := e.resolveTemp(ctx, city)

	waterGoal := tracker.WaterGoal(weight, activity, tempC, hasTemp)
	calorieGoal := tracker.CalorieGoal(weight, height, age, activity)

	weatherMsg := ""
	if hasTemp && tempC > 25 {
		weatherMsg = fmt.Sprintf(" (На улице %s°C, добавлено 500 мл воды)", formatNumber(tempC))
	}

	profile := models.Profile{
		UserID:          state.UserID,
		WeightKg:        weight,
		HeightCm:        height,
		Age:             age,
		ActivityMinutes: activity,
		City:            city,
		WaterGoalMl:     waterGoal,
		CalorieGoalKcal: calorieGoal,
		CreatedAt:       time.Now(),
	}
	e.store.SaveProfile(ctx, profile)
	e.store.ClearState(state.UserID)

	if e.bus != nil {
		e.bus.PublishProgress(events.EventProfileCreated, state.UserID)
	}

	return models.Response{
		Text: fmt.Sprintf("Профиль сохранен! Цель: %.0f мл воды%s, %.0f ккал.", waterGoal, weatherMsg, calorieGoal),
	}
}

func (e *Engine) resolveTemp(ctx context.Context, city string) (float64, bool) {
	if e.weather == nil {
		return 0, false
	}
	lookupCtx, cancel := context.WithTimeout(ctx, e.weatherTimeout)
	defer cancel()

	temp, err := e.weather.CurrentTemp(lookupCtx, city)
	if err != nil {
		e.logger.Printf("conversation: weather for %q: %v", city, err)
		return 0, false
	}
	return temp, true
}

func (e *Engine) handleGramsStep(ctx context.Context, state *models.UserState, text string) models.Response {
	grams, err := parsePositiveFloat(strings.TrimSpace(text))
	if err != nil {
		return models.Response{Text: "Введите число."}
	}

	kcal100g, err := strconv.ParseFloat(state.Data[dataKcal100g], 64)
	if err != nil {
		e.store.ClearState(state.UserID)
		return models.Response{Text: "Сценарий прерван. Начните заново с /log_food."}
	}

	calories := grams / 100 * kcal100g

	if _, err := e.tracker.LogFood(ctx, state.UserID, calories); err != nil {
		e.store.ClearState(state.UserID)
		if errors.Is(err, session.ErrProfileNotFound) {
			return models.Response{Text: "Сначала настройте профиль через /set_profile"}
		}
		return models.Response{Text: "Не получилось записать еду, попробуйте еще раз."}
	}

	e.store.ClearState(state.UserID)
	return models.Response{Text: fmt.Sprintf("Записано: %.1f ккал.", calories)}
}

func parsePositiveFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.New("must be positive")
	}
	return v, nil
}

func parseNonNegativeInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errors.New("must not be negative")
	}
	return v, nil
}

// formatNumber печатает число без хвостовых нулей: 89 вместо 89.0.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
