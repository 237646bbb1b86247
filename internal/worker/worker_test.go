package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vitatrack/internal/models"
)

type fakeSource struct {
	profiles map[int64]models.Profile
}

func (f *fakeSource) Profile(userID int64) (models.Profile, bool) {
	p, ok := f.profiles[userID]
	return p, ok
}

type fakeUpserter struct {
	mu       sync.Mutex
	calls    []models.Profile
	failures int
	done     chan struct{}
}

func (f *fakeUpserter) UpsertProfileRow(ctx context.Context, p *models.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, *p)
	if f.failures > 0 {
		f.failures--
		return errors.New("api unavailable")
	}
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return nil
}

func (f *fakeUpserter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestWorker(src *fakeSource, up *fakeUpserter) *SheetsWorker {
	return NewSheetsWorker(src, up, nil, RetryPolicy{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
	}, nil)
}

func TestSheetsWorker_ProcessesTask(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{
		1: {UserID: 1, City: "Самара", WaterGoalMl: 2600},
	}}
	up := &fakeUpserter{done: make(chan struct{})}
	done := up.done
	w := newTestWorker(src, up)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := w.EnqueueTask(ctx, SyncTask{Type: TaskUpsertProfile, UserID: 1}); err != nil {
		t.Fatalf("EnqueueTask: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("задание не обработано")
	}

	up.mu.Lock()
	defer up.mu.Unlock()
	if len(up.calls) != 1 || up.calls[0].City != "Самара" {
		t.Errorf("calls = %+v", up.calls)
	}
}

func TestSheetsWorker_RetriesOnFailure(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{1: {UserID: 1}}}
	up := &fakeUpserter{failures: 2, done: make(chan struct{})}
	done := up.done
	w := newTestWorker(src, up)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	w.EnqueueTask(ctx, SyncTask{Type: TaskUpsertProfile, UserID: 1})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("задание не добралось до успеха")
	}

	if got := up.callCount(); got != 3 {
		t.Errorf("попыток %d, want 3", got)
	}
}

func TestSheetsWorker_SkipsMissingProfile(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{}}
	up := &fakeUpserter{}
	w := newTestWorker(src, up)

	ctx := context.Background()
	w.process(ctx, SyncTask{Type: TaskUpsertProfile, UserID: 99})

	if got := up.callCount(); got != 0 {
		t.Errorf("вызовов %d для отсутствующего профиля", got)
	}
}

func TestSheetsWorker_IgnoresUnknownTaskType(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{1: {UserID: 1}}}
	up := &fakeUpserter{}
	w := newTestWorker(src, up)

	w.process(context.Background(), SyncTask{Type: "unknown", UserID: 1})

	if got := up.callCount(); got != 0 {
		t.Errorf("вызовов %d для неизвестного типа", got)
	}
}

func TestSheetsWorker_StopsOnContextCancel(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{}}
	up := &fakeUpserter{}
	w := newTestWorker(src, up)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("воркер не остановился по контексту")
	}
}

func TestSheetsWorker_ReadsProfileAtProcessTime(t *testing.T) {
	src := &fakeSource{profiles: map[int64]models.Profile{1: {UserID: 1, LoggedWaterMl: 100}}}
	up := &fakeUpserter{}
	w := newTestWorker(src, up)

	// Профиль меняется между постановкой и обработкой: в таблицу должна
	// уехать свежая версия.
	src.profiles[1] = models.Profile{UserID: 1, LoggedWaterMl: 500}
	w.process(context.Background(), SyncTask{Type: TaskUpsertProfile, UserID: 1})

	up.mu.Lock()
	defer up.mu.Unlock()
	if len(up.calls) != 1 || up.calls[0].LoggedWaterMl != 500 {
		t.Errorf("calls = %+v", up.calls)
	}
}
