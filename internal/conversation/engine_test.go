package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"vitatrack/internal/models"
	"vitatrack/internal/session"
	"vitatrack/internal/tracker"
)

type fakeWeather struct {
	temp float64
	err  error
	city string
}

func (f *fakeWeather) CurrentTemp(ctx context.Context, city string) (float64, error) {
	f.city = city
	if f.err != nil {
		return 0, f.err
	}
	return f.temp, nil
}

func newTestEngine(weather WeatherProvider) (*Engine, *session.Store) {
	store := session.NewStore(nil, nil)
	trk := tracker.New(store, nil)
	return NewEngine(store, trk, weather, nil, nil), store
}

func runProfileSetup(t *testing.T, eng *Engine, userID int64, inputs []string) models.Response {
	t.Helper()
	eng.StartProfileSetup(userID)
	var resp models.Response
	for _, in := range inputs {
		resp = eng.HandleInput(context.Background(), userID, in)
	}
	return resp
}

func TestProfileSetup_FullFlow_WeatherUnavailable(t *testing.T) {
	eng, store := newTestEngine(&fakeWeather{err: errors.New("api down")})

	resp := runProfileSetup(t, eng, 1, []string{"70", "175", "30", "40", "Самара"})

	if !strings.Contains(resp.Text, "2600 мл") {
		t.Errorf("ответ без нормы воды: %q", resp.Text)
	}
	if !strings.Contains(resp.Text, "2044 ккал") {
		t.Errorf("ответ без нормы калорий: %q", resp.Text)
	}

	p, ok := store.Profile(1)
	if !ok {
		t.Fatal("профиль не сохранен")
	}
	if p.WaterGoalMl != 2600 {
		t.Errorf("WaterGoalMl = %v, want 2600", p.WaterGoalMl)
	}
	if p.CalorieGoalKcal != 2043.75 {
		t.Errorf("CalorieGoalKcal = %v, want 2043.75", p.CalorieGoalKcal)
	}
	if p.City != "Самара" {
		t.Errorf("City = %q", p.City)
	}
	if eng.Active(1) {
		t.Error("диалог остался открыт после завершения")
	}
}

func TestProfileSetup_HotWeatherBonus(t *testing.T) {
	fake := &fakeWeather{temp: 30}
	eng, store := newTestEngine(fake)

	resp := runProfileSetup(t, eng, 1, []string{"70", "175", "30", "40", "Дубай"})

	if fake.city != "Дубай" {
		t.Errorf("справочник запрошен для %q", fake.city)
	}
	p, _ := store.Profile(1)
	if p.WaterGoalMl != 3100 {
		t.Errorf("WaterGoalMl = %v, want 3100", p.WaterGoalMl)
	}
	if !strings.Contains(resp.Text, "добавлено 500 мл") {
		t.Errorf("ответ без пометки о жаре: %q", resp.Text)
	}
}

func TestProfileSetup_InvalidInputStaysOnStep(t *testing.T) {
	eng, store := newTestEngine(nil)
	eng.StartProfileSetup(1)

	resp := eng.HandleInput(context.Background(), 1, "семьдесят")
	if resp.Text != "Введите число." {
		t.Errorf("resp = %q", resp.Text)
	}
	st := store.State(1)
	if st == nil || st.CurrentStep != StepWeight {
		t.Errorf("шаг не сохранился: %+v", st)
	}

	// Валидный ввод продвигает ровно на один шаг.
	eng.HandleInput(context.Background(), 1, "70")
	st = store.State(1)
	if st == nil || st.CurrentStep != StepHeight {
		t.Errorf("после веса шаг = %+v", st)
	}
}

func TestProfileSetup_CommaDecimal(t *testing.T) {
	eng, store := newTestEngine(nil)
	eng.StartProfileSetup(1)

	eng.HandleInput(context.Background(), 1, "70,5")
	st := store.State(1)
	if st == nil || st.CurrentStep != StepHeight {
		t.Fatalf("запятая не принята как разделитель: %+v", st)
	}
	if st.Data["weight"] != "70.5" {
		t.Errorf("weight = %q", st.Data["weight"])
	}
}

func TestProfileSetup_NegativeAgeRejected(t *testing.T) {
	eng, _ := newTestEngine(nil)
	eng.StartProfileSetup(1)
	eng.HandleInput(context.Background(), 1, "70")
	eng.HandleInput(context.Background(), 1, "175")

	resp := eng.HandleInput(context.Background(), 1, "-5")
	if resp.Text != "Введите целое число." {
		t.Errorf("resp = %q", resp.Text)
	}
}

func TestProfileSetup_ZeroActivityAllowed(t *testing.T) {
	eng, store := newTestEngine(nil)

	runProfileSetup(t, eng, 1, []string{"70", "175", "30", "0", "Самара"})

	p, ok := store.Profile(1)
	if !ok {
		t.Fatal("профиль не сохранен")
	}
	if p.WaterGoalMl != 2100 {
		t.Errorf("WaterGoalMl = %v, want 2100", p.WaterGoalMl)
	}
}

func TestProfileSetup_CommandConsumedAsFieldValue(t *testing.T) {
	eng, _ := newTestEngine(nil)
	eng.StartProfileSetup(1)
	eng.HandleInput(context.Background(), 1, "70")
	eng.HandleInput(context.Background(), 1, "175")
	eng.HandleInput(context.Background(), 1, "30")
	eng.HandleInput(context.Background(), 1, "40")

	// Команда посреди сценария — обычный ввод: на шаге города она
	// становится названием города.
	resp := eng.HandleInput(context.Background(), 1, "/check_progress")
	if !strings.Contains(resp.Text, "Профиль сохранен") {
		t.Errorf("resp = %q", resp.Text)
	}
}

func TestFoodGrams_Flow(t *testing.T) {
	eng, store := newTestEngine(nil)
	store.SaveProfile(context.Background(), models.Profile{UserID: 1, WaterGoalMl: 2600, CalorieGoalKcal: 2000})

	resp := eng.StartFoodGrams(1, "Банан", 89)
	if !strings.Contains(resp.Text, "Банан: 89 ккал/100г") {
		t.Errorf("приглашение = %q", resp.Text)
	}

	resp = eng.HandleInput(context.Background(), 1, "150")
	if resp.Text != "Записано: 133.5 ккал." {
		t.Errorf("resp = %q", resp.Text)
	}

	p, _ := store.Profile(1)
	if p.LoggedCalories != 133.5 {
		t.Errorf("LoggedCalories = %v, want 133.5", p.LoggedCalories)
	}
	if eng.Active(1) {
		t.Error("диалог остался открыт")
	}
}

func TestFoodGrams_InvalidGramsStays(t *testing.T) {
	eng, store := newTestEngine(nil)
	store.SaveProfile(context.Background(), models.Profile{UserID: 1})
	eng.StartFoodGrams(1, "Банан", 89)

	resp := eng.HandleInput(context.Background(), 1, "-10")
	if resp.Text != "Введите число." {
		t.Errorf("resp = %q", resp.Text)
	}
	if !eng.Active(1) {
		t.Error("невалидный ввод закрыл диалог")
	}
}

func TestFoodGrams_NoProfileClosesFlow(t *testing.T) {
	eng, _ := newTestEngine(nil)
	eng.StartFoodGrams(1, "Банан", 89)

	resp := eng.HandleInput(context.Background(), 1, "150")
	if !strings.Contains(resp.Text, "/set_profile") {
		t.Errorf("resp = %q", resp.Text)
	}
	if eng.Active(1) {
		t.Error("диалог остался открыт без профиля")
	}
}

func TestCancel(t *testing.T) {
	eng, _ := newTestEngine(nil)

	if eng.Cancel(1) {
		t.Error("Cancel без диалога вернул true")
	}

	eng.StartProfileSetup(1)
	if !eng.Cancel(1) {
		t.Error("Cancel открытого диалога вернул false")
	}
	if eng.Active(1) {
		t.Error("диалог остался после Cancel")
	}
}

func TestRestart_ResetsProgress(t *testing.T) {
	eng, store := newTestEngine(nil)
	eng.StartProfileSetup(1)
	eng.HandleInput(context.Background(), 1, "70")
	eng.HandleInput(context.Background(), 1, "175")

	// Повторный запуск перезапускает сценарий с первого шага.
	eng.StartProfileSetup(1)
	st := store.State(1)
	if st == nil || st.CurrentStep != StepWeight {
		t.Errorf("после перезапуска шаг = %+v", st)
	}
	if len(st.Data) != 0 {
		t.Errorf("собранные значения пережили перезапуск: %+v", st.Data)
	}
}

func TestHandleInput_NoActiveFlow(t *testing.T) {
	eng, _ := newTestEngine(nil)

	resp := eng.HandleInput(context.Background(), 1, "привет")
	if !strings.Contains(resp.Text, "Нет активного сценария") {
		t.Errorf("resp = %q", resp.Text)
	}
}
