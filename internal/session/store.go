package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"vitatrack/internal/models"
)

// ErrProfileNotFound возвращается при попытке работать с пользователем,
// который еще не завершил настройку профиля.
var ErrProfileNotFound = errors.New("profile not found")

// Persister — необязательное зеркало профилей во внешнем хранилище.
// Запись best-effort: ошибки логируются и не ломают основной путь.
type Persister interface {
	SaveProfile(ctx context.Context, profile *models.Profile) error
}

type entry struct {
	mu      sync.Mutex
	profile *models.Profile
	state   *models.UserState
}

// Store владеет всеми профилями и открытыми диалогами, по одному на
// пользователя. Все изменения одного ключа сериализуются мьютексом записи,
// операции над разными пользователями друг друга не блокируют.
type Store struct {
	mu      sync.Mutex
	entries map[int64]*entry

	persist Persister
	logger  *log.Logger
}

func NewStore(persist Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		entries: make(map[int64]*entry),
		persist: persist,
		logger:  logger,
	}
}

func (s *Store) entryFor(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	return e
}

// Seed загружает ранее сохраненные профили, не трогая открытые диалоги.
// Вызывается один раз на старте, до начала обработки сообщений.
func (s *Store) Seed(profiles []*models.Profile) {
	for _, p := range profiles {
		if p == nil {
			continue
		}
		e := s.entryFor(p.UserID)
		e.mu.Lock()
		cp := *p
		e.profile = &cp
		e.mu.Unlock()
	}
}

// Profile возвращает копию профиля пользователя.
func (s *Store) Profile(userID int64) (models.Profile, bool) {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profile == nil {
		return models.Profile{}, false
	}
	return *e.profile, true
}

// SaveProfile заменяет профиль пользователя целиком (завершение настройки
// перезаписывает предыдущую анкету вместе со счетчиками).
func (s *Store) SaveProfile(ctx context.Context, profile models.Profile) {
	profile.Schema = models.SchemaVersion
	profile.UpdatedAt = time.Now()

	e := s.entryFor(profile.UserID)
	e.mu.Lock()
	cp := profile
	e.profile = &cp
	e.mu.Unlock()

	s.mirror(ctx, &profile)
}

// UpdateProfile выполняет read-modify-write профиля под замком записи и
// возвращает копию обновленного состояния. Внешний ввод-вывод внутри fn
// недопустим: замок держится на время вызова.
func (s *Store) UpdateProfile(ctx context.Context, userID int64, fn func(p *models.Profile)) (models.Profile, error) {
	e := s.entryFor(userID)
	e.mu.Lock()
	if e.profile == nil {
		e.mu.Unlock()
		return models.Profile{}, ErrProfileNotFound
	}
	fn(e.profile)
	e.profile.UpdatedAt = time.Now()
	updated := *e.profile
	e.mu.Unlock()

	s.mirror(ctx, &updated)
	return updated, nil
}

// mirror пишет копию профиля во внешнее хранилище уже после отпускания
// замка пользователя.
func (s *Store) mirror(ctx context.Context, profile *models.Profile) {
	if s.persist == nil {
		return
	}
	if err := s.persist.SaveProfile(ctx, profile); err != nil {
		s.logger.Printf("session: mirror profile %d: %v", profile.UserID, err)
	}
}

// Count возвращает число пользователей с готовым профилем.
func (s *Store) Count() int {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	n := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.profile != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Profiles возвращает копии всех готовых профилей.
func (s *Store) Profiles() []models.Profile {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	profiles := make([]models.Profile, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.profile != nil {
			profiles = append(profiles, *e.profile)
		}
		e.mu.Unlock()
	}
	return profiles
}

// State возвращает копию открытого диалога пользователя, либо nil.
func (s *Store) State(userID int64) *models.UserState {
	e := s.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	cp := *e.state
	cp.Data = make(map[string]string, len(e.state.Data))
	for k, v := range e.state.Data {
		cp.Data[k] = v
	}
	return &cp
}

// SetState открывает или продвигает диалог пользователя.
func (s *Store) SetState(userID int64, flow, step string, data map[string]string) {
	if data == nil {
		data = make(map[string]string)
	}
	e := s.entryFor(userID)
	e.mu.Lock()
	e.state = &models.UserState{
		UserID:      userID,
		Flow:        flow,
		CurrentStep: step,
		Data:        data,
	}
	e.mu.Unlock()
}

// ClearState закрывает диалог; пользователь возвращается в режим команд.
func (s *Store) ClearState(userID int64) {
	e := s.entryFor(userID)
	e.mu.Lock()
	e.state = nil
	e.mu.Unlock()
}
