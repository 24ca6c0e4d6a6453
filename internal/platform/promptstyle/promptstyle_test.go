package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystem(t *testing.T) {
	got := ApplySystem("Plan visuals.\nMore rules.", ModeJSON)
	if !strings.HasPrefix(got, marker) || !strings.Contains(got, "Task summary: Plan visuals.") || !strings.Contains(got, "Output only the requested JSON") {
		t.Fatalf("unexpected prompt:\n%s", got)
	}
	if !strings.HasSuffix(got, "Plan visuals.\nMore rules.") {
		t.Fatalf("original prompt must be kept at the end:\n%s", got)
	}
	if again := ApplySystem(got, ModeProse); again != got {
		t.Fatalf("ApplySystem should be idempotent")
	}
	if ApplySystem("   ", ModeJSON) != "" {
		t.Fatalf("empty prompt should stay empty")
	}
}
