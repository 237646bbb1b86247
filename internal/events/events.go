package events

import (
	"encoding/json"
	"log"
	"sync"
)

// Типы событий ядра.
const (
	EventProfileCreated = "profile.created"
	EventWaterLogged    = "water.logged"
	EventFoodLogged     = "food.logged"
	EventWorkoutLogged  = "workout.logged"
)

// Event — событие с JSON-полезной нагрузкой.
type Event struct {
	Type    string
	Payload json.RawMessage
}

// ProgressEventPayload — нагрузка всех событий трекера: кого пересчитывать.
type ProgressEventPayload struct {
	UserID int64 `json:"user_id"`
}

type Handler func(ev Event) error

// EventBus — синхронная шина подписки на события ядра. Обработчики
// вызываются в порядке подписки; ошибка обработчика логируется и не
// прерывает доставку остальным.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *log.Logger
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   log.Default(),
	}
}

func (b *EventBus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

func (b *EventBus) Publish(ev Event) {
	b.mu.RLock()
	handlers := b.handlers[ev.Type]
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ev); err != nil {
			b.logger.Printf("event bus: handler for %s: %v", ev.Type, err)
		}
	}
}

// DecodePayload разбирает нагрузку события в v.
func DecodePayload(ev Event, v interface{}) error {
	return json.Unmarshal(ev.Payload, v)
}

// PublishProgress собирает и публикует событие трекера для пользователя.
func (b *EventBus) PublishProgress(eventType string, userID int64) {
	payload, err := json.Marshal(ProgressEventPayload{UserID: userID})
	if err != nil {
		b.logger.Printf("event bus: marshal payload for %s: %v", eventType, err)
		return
	}
	b.Publish(Event{Type: eventType, Payload: payload})
}
