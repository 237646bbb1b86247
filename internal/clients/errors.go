package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind различает причины отказа внешнего справочника. Ядру сейчас хватает
// самого факта отказа, но причина сохраняется для логов и будущих ретраев.
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindMalformed Kind = "malformed"
	KindNotFound  Kind = "not_found"
)

// LookupError — типизированная ошибка обращения к внешнему справочнику.
type LookupError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *LookupError) Unwrap() error { return e.Err }

// IsNotFound сообщает, что справочник отработал, но ничего не нашел.
func IsNotFound(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.Kind == KindNotFound
}

// classify разделяет сетевые отказы на таймаут и остальной транспорт.
func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindTransport
}
