package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"vitatrack/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisQueueKey = "vitatrack:sync:tasks"

type TaskType string

const (
	// TaskUpsertProfile — обновить строку пользователя в таблице прогресса.
	TaskUpsertProfile TaskType = "upsert_profile"
)

// SyncTask — задание на синхронизацию одного пользователя.
type SyncTask struct {
	Type   TaskType `json:"type"`
	UserID int64    `json:"user_id"`
}

// RetryPolicy задает повторы при отказах внешнего API.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// ProfileSource отдает актуальный профиль на момент обработки задания.
type ProfileSource interface {
	Profile(userID int64) (models.Profile, bool)
}

// SheetUpserter — приемник синхронизации (Google Таблица прогресса).
type SheetUpserter interface {
	UpsertProfileRow(ctx context.Context, profile *models.Profile) error
}

// SheetsWorker перегоняет задания синхронизации из очереди в таблицу.
// Очередь живет в Redis, при его недоступности — в памяти процесса.
// Задание несет только ID пользователя: профиль перечитывается из
// хранилища при обработке, поэтому повторная постановка того же
// пользователя безвредна.
type SheetsWorker struct {
	store  ProfileSource
	sheets SheetUpserter
	redis  *redis.Client
	retry  RetryPolicy
	logger *log.Logger

	tasks chan SyncTask
}

func NewSheetsWorker(store ProfileSource, sheets SheetUpserter, redisClient *redis.Client, retry RetryPolicy, logger *log.Logger) *SheetsWorker {
	if logger == nil {
		logger = log.Default()
	}
	if retry.MaxRetries <= 0 {
		retry.MaxRetries = 3
	}
	if retry.InitialDelay <= 0 {
		retry.InitialDelay = time.Second
	}
	if retry.MaxDelay <= 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor <= 1 {
		retry.BackoffFactor = 2
	}
	return &SheetsWorker{
		store:  store,
		sheets: sheets,
		redis:  redisClient,
		retry:  retry,
		logger: logger,
		tasks:  make(chan SyncTask, 256),
	}
}

// EnqueueTask ставит задание в очередь. Переполненная очередь в памяти
// роняет задание с записью в лог: прогресс доедет со следующим событием.
func (w *SheetsWorker) EnqueueTask(ctx context.Context, task SyncTask) error {
	if w.redis != nil {
		raw, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return w.redis.LPush(ctx, redisQueueKey, raw).Err()
	}

	select {
	case w.tasks <- task:
		return nil
	default:
		w.logger.Printf("worker: queue full, dropping sync for user %d", task.UserID)
		return nil
	}
}

// Start обрабатывает очередь до отмены контекста.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Println("worker: sheets sync started")
	for {
		task, ok := w.nextTask(ctx)
		if !ok {
			w.logger.Println("worker: sheets sync stopped")
			return
		}
		w.process(ctx, task)
	}
}

func (w *SheetsWorker) nextTask(ctx context.Context) (SyncTask, bool) {
	if w.redis != nil {
		for {
			if ctx.Err() != nil {
				return SyncTask{}, false
			}
			res, err := w.redis.BRPop(ctx, 2*time.Second, redisQueueKey).Result()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				if ctx.Err() != nil {
					return SyncTask{}, false
				}
				w.logger.Printf("worker: queue pop: %v", err)
				time.Sleep(time.Second)
				continue
			}
			var task SyncTask
			if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
				w.logger.Printf("worker: decode task: %v", err)
				continue
			}
			return task, true
		}
	}

	select {
	case <-ctx.Done():
		return SyncTask{}, false
	case task := <-w.tasks:
		return task, true
	}
}

func (w *SheetsWorker) process(ctx context.Context, task SyncTask) {
	if task.Type != TaskUpsertProfile {
		w.logger.Printf("worker: unknown task type %q", task.Type)
		return
	}

	profile, ok := w.store.Profile(task.UserID)
	if !ok {
		// Профиль мог быть сброшен между постановкой и обработкой.
		return
	}

	delay := w.retry.InitialDelay
	var err error
	for attempt := 0; attempt <= w.retry.MaxRetries; attempt++ {
		if err = w.sheets.UpsertProfileRow(ctx, &profile); err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		w.logger.Printf("worker: upsert user %d attempt %d: %v", task.UserID, attempt+1, err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * w.retry.BackoffFactor)
		if delay > w.retry.MaxDelay {
			delay = w.retry.MaxDelay
		}
	}
	w.logger.Printf("worker: giving up on user %d after %d attempts: %v", task.UserID, w.retry.MaxRetries+1, err)
}
