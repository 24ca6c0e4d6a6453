package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestFromUnwrapsWrappedError(t *testing.T) {
	inner := BadRequest("missing_topic", errors.New("topic required"))
	wrapped := fmt.Errorf("handler: %w", inner)

	got := From(wrapped)
	if got.Status != http.StatusBadRequest || got.Code != "missing_topic" {
		t.Fatalf("From: got status=%d code=%q", got.Status, got.Code)
	}
}

func TestFromDefaultsToInternal(t *testing.T) {
	got := From(errors.New("boom"))
	if got.Status != http.StatusInternalServerError || got.Code != "internal" {
		t.Fatalf("From: got status=%d code=%q", got.Status, got.Code)
	}
	if From(nil) != nil {
		t.Fatalf("From(nil): want nil")
	}
}
