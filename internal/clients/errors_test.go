package clients

import (
	"errors"
	"testing"
)

func assertLookupKind(t *testing.T, err error, want Kind) {
	t.Helper()
	var le *LookupError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LookupError", err)
	}
	if le.Kind != want {
		t.Errorf("Kind = %q, want %q", le.Kind, want)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&LookupError{Op: "x", Kind: KindNotFound}) {
		t.Error("not_found не распознан")
	}
	if IsNotFound(&LookupError{Op: "x", Kind: KindStatus}) {
		t.Error("status принят за not_found")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("посторонняя ошибка принята за not_found")
	}
	if IsNotFound(nil) {
		t.Error("nil принят за not_found")
	}
}

func TestLookupError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := &LookupError{Op: "food lookup", Kind: KindTransport, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("Unwrap не доходит до вложенной ошибки")
	}
}
