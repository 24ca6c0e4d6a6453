package blog

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func attemptPairs(attempts []Attempt) []searchCall {
	out := make([]searchCall, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, searchCall{Query: a.Query, Engine: a.Engine})
	}
	return out
}

func TestResolverCascadeOrder(t *testing.T) {
	// Only the third variant on engine B has a hit.
	search := &fakeSearcher{results: map[searchCall]string{
		{Query: "partition log", Engine: EngineBingImages}: "https://img.example/hit.png",
	}}
	fetch := &fakeDownloader{}
	r := NewResolver(nil, search, fetch, ResolverConfig{Validator: staticValidator{valid: true}})

	out := filepath.Join(t.TempDir(), "assets", "v.png")
	path, attempts := r.ResolveWithTrace(context.Background(), "kafka", "partition log", VisualDiagram, out)
	if path != out {
		t.Fatalf("path=%q, want %q", path, out)
	}
	want := []searchCall{
		{"kafka partition log diagram", EngineGoogleImages},
		{"kafka partition log diagram", EngineBingImages},
		{"kafka partition log", EngineGoogleImages},
		{"kafka partition log", EngineBingImages},
		{"partition log", EngineGoogleImages},
		{"partition log", EngineBingImages},
	}
	if diff := cmp.Diff(want, attemptPairs(attempts)); diff != "" {
		t.Fatalf("attempt order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, search.Calls()); diff != "" {
		t.Fatalf("search calls (-want +got):\n%s", diff)
	}
	if !attempts[len(attempts)-1].OK {
		t.Fatalf("last attempt should be the success")
	}
	if len(fetch.calls) != 1 {
		t.Fatalf("downloads=%d, want 1", len(fetch.calls))
	}
}

func TestResolverShortCircuits(t *testing.T) {
	search := &fakeSearcher{results: map[searchCall]string{
		{Query: "rust borrow checker image", Engine: EngineGoogleImages}: "https://img.example/a.png",
		{Query: "rust borrow checker image", Engine: EngineBingImages}:   "https://img.example/b.png",
	}}
	fetch := &fakeDownloader{}
	r := NewResolver(nil, search, fetch, ResolverConfig{})
	_, attempts := r.ResolveWithTrace(context.Background(), "rust", "borrow checker", VisualImage, filepath.Join(t.TempDir(), "x.png"))
	if len(attempts) != 1 || len(search.Calls()) != 1 || len(fetch.calls) != 1 {
		t.Fatalf("expected exactly one attempt, got attempts=%d searches=%d downloads=%d", len(attempts), len(search.Calls()), len(fetch.calls))
	}
}

func TestResolverDownloadFailureMovesToNextEngine(t *testing.T) {
	search := &fakeSearcher{results: map[searchCall]string{
		{Query: "t k image", Engine: EngineGoogleImages}: "https://img.example/blocked.png",
		{Query: "t k image", Engine: EngineBingImages}:   "https://img.example/ok.png",
	}}
	fetch := &fakeDownloader{fail: map[string]bool{"https://img.example/blocked.png": true}}
	r := NewResolver(nil, search, fetch, ResolverConfig{})
	path, attempts := r.ResolveWithTrace(context.Background(), "t", "k", VisualImage, filepath.Join(t.TempDir(), "x.png"))
	if path == "" {
		t.Fatalf("expected success on engine B")
	}
	if diff := cmp.Diff([]string{"https://img.example/blocked.png", "https://img.example/ok.png"}, fetch.calls); diff != "" {
		t.Fatalf("downloads (-want +got):\n%s", diff)
	}
	if attempts[0].OK || attempts[0].URL == "" {
		t.Fatalf("first attempt should record the URL and fail: %+v", attempts[0])
	}
}

func TestResolverExhaustionTriesOneBroadFallback(t *testing.T) {
	search := &fakeSearcher{errs: map[searchCall]error{
		{Query: "t k diagram", Engine: EngineGoogleImages}: errors.New("status 500"),
	}}
	r := NewResolver(nil, search, &fakeDownloader{}, ResolverConfig{})
	path, ok := r.Resolve(context.Background(), "t", "k", VisualDiagram, filepath.Join(t.TempDir(), "x.png"))
	if ok || path != "" {
		t.Fatalf("expected absent, got %q", path)
	}
	calls := search.Calls()
	if len(calls) != 7 {
		t.Fatalf("expected 6 cascade attempts plus 1 fallback, got %d: %+v", len(calls), calls)
	}
	if last := calls[6]; last != (searchCall{Query: "t diagram", Engine: EngineGoogleImages}) {
		t.Fatalf("unexpected fallback attempt %+v", last)
	}
	fallbacks := 0
	for _, c := range calls {
		if c.Query == "t diagram" {
			fallbacks++
		}
	}
	if fallbacks != 1 {
		t.Fatalf("fallback attempted %d times", fallbacks)
	}
}

func TestResolverFallbackEnginesConfigurable(t *testing.T) {
	search := &fakeSearcher{}
	r := NewResolver(nil, search, &fakeDownloader{}, ResolverConfig{FallbackEngines: []string{EngineGoogleImages, EngineBingImages}})
	_, attempts := r.ResolveWithTrace(context.Background(), "t", "k", VisualImage, filepath.Join(t.TempDir(), "x.png"))
	if len(attempts) != 8 || !attempts[7].Fallback || attempts[7].Engine != EngineBingImages {
		t.Fatalf("unexpected attempts: %+v", attempts)
	}
}

func TestResolverInvalidKeyMakesNoCalls(t *testing.T) {
	search := &fakeSearcher{results: map[searchCall]string{{Query: "t k image", Engine: EngineGoogleImages}: "https://img.example/a.png"}}
	r := NewResolver(nil, search, &fakeDownloader{}, ResolverConfig{Validator: staticValidator{valid: false}})
	if _, ok := r.Resolve(context.Background(), "t", "k", VisualImage, filepath.Join(t.TempDir(), "x.png")); ok {
		t.Fatalf("expected absent with invalid key")
	}
	if n := len(search.Calls()); n != 0 {
		t.Fatalf("expected no searches, got %d", n)
	}
}

func TestQueryVariantsSkipEmptyParts(t *testing.T) {
	want := []string{"graph db diagram", "graph db", "db"}
	if diff := cmp.Diff(want, QueryVariants(" graph ", "db", VisualDiagram)); diff != "" {
		t.Fatalf("variants (-want +got):\n%s", diff)
	}
}

type countingChecker struct {
	mu    sync.Mutex
	calls int
	valid bool
	err   error
}

func (c *countingChecker) ValidateKey(context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.valid, c.err
}

func TestMemoizedValidator(t *testing.T) {
	checker := &countingChecker{valid: true}
	v := NewMemoizedValidator(nil, checker)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !v.Valid(context.Background()) {
				t.Errorf("expected valid")
			}
		}()
	}
	wg.Wait()
	if checker.calls != 1 {
		t.Fatalf("checker calls=%d, want 1", checker.calls)
	}

	checker.valid = false
	if !v.Valid(context.Background()) {
		t.Fatalf("memoized answer should hold until Reset")
	}
	v.Reset()
	if v.Valid(context.Background()) {
		t.Fatalf("expected re-check after Reset to see invalid key")
	}
	if checker.calls != 2 {
		t.Fatalf("checker calls=%d, want 2", checker.calls)
	}
}

func TestMemoizedValidatorTreatsErrorAsInvalid(t *testing.T) {
	v := NewMemoizedValidator(nil, &countingChecker{valid: true, err: errors.New("timeout")})
	if v.Valid(context.Background()) {
		t.Fatalf("check error must count as invalid")
	}
}

func TestMemoizedValidatorIgnoresCancelledCaller(t *testing.T) {
	checker := &countingChecker{valid: true, err: context.Canceled}
	v := NewMemoizedValidator(nil, checker)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if v.Valid(ctx) {
		t.Fatalf("cancelled check should report invalid")
	}

	checker.mu.Lock()
	checker.err = nil
	checker.mu.Unlock()
	if !v.Valid(context.Background()) {
		t.Fatalf("cancelled check must not be memoized")
	}
	if checker.calls != 2 {
		t.Fatalf("checker calls=%d, want 2", checker.calls)
	}
}
