package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetAppErrorUnwrapsChains(t *testing.T) {
	base := errors.New("row missing")
	appErr := NewNotFoundError(base, "Session not found")
	wrapped := fmt.Errorf("complete: %w", appErr)

	got, ok := GetAppError(wrapped)
	if !ok {
		t.Fatal("AppError not found in chain")
	}
	if got.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", got.StatusCode)
	}
	if !errors.Is(wrapped, base) {
		t.Fatal("cause lost through AppError")
	}
}

func TestGetAppErrorPlainError(t *testing.T) {
	if _, ok := GetAppError(errors.New("boom")); ok {
		t.Fatal("plain error misread as AppError")
	}
}

func TestGoneErrorCarriesData(t *testing.T) {
	payload := map[string]int{"score": 50}
	appErr := NewGoneError(errors.New("expired"), "Session has expired", payload)

	if appErr.StatusCode != http.StatusGone {
		t.Fatalf("status = %d, want 410", appErr.StatusCode)
	}
	if appErr.Data == nil {
		t.Fatal("expiry data dropped")
	}
}
