package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDirectURLChecksKnownFieldsInOrder(t *testing.T) {
	cases := []struct {
		name string
		in   ImageResult
		want string
	}{
		{name: "original", in: ImageResult{Original: "https://a/x.png", OriginalImageURL: "https://b/y.png"}, want: "https://a/x.png"},
		{name: "bing_field", in: ImageResult{OriginalImageURL: "http://b/y.png"}, want: "http://b/y.png"},
		{name: "skips_non_http", in: ImageResult{Original: "data:image/png;base64,xx", OriginalImageURL: "https://b/y.png"}, want: "https://b/y.png"},
		{name: "thumbnail_only", in: ImageResult{Thumbnail: "https://t/z.png"}, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.DirectURL(); got != tc.want {
				t.Fatalf("DirectURL()=%q, want %q", got, tc.want)
			}
		})
	}
}

func TestSearchInspectsFirstThreeResults(t *testing.T) {
	var gotQuery, gotEngine, gotKey, gotIJN string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery, gotEngine, gotKey, gotIJN = q.Get("q"), q.Get("engine"), q.Get("api_key"), q.Get("ijn")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images_results":[{"thumbnail":"https://t/1"},{"original_image_url":"https://img/2.png"},{"original":"https://img/3.png"}]}`))
	}))
	defer srv.Close()

	c := New(nil, Config{APIKey: "k", BaseURL: srv.URL})
	got, err := c.Search(context.Background(), "graph db", "bing_images")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != "https://img/2.png" {
		t.Fatalf("url=%q", got)
	}
	if gotQuery != "graph db" || gotEngine != "bing_images" || gotKey != "k" || gotIJN != "0" {
		t.Fatalf("unexpected params q=%q engine=%q key=%q ijn=%q", gotQuery, gotEngine, gotKey, gotIJN)
	}
}

func TestSearchIgnoresResultsPastLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"images_results":[{},{},{},{"original":"https://img/4.png"}]}`))
	}))
	defer srv.Close()

	got, err := New(nil, Config{APIKey: "k", BaseURL: srv.URL}).Search(context.Background(), "q", "google_images")
	if err != nil || got != "" {
		t.Fatalf("expected no result, got %q err=%v", got, err)
	}
}

func TestSearchErrors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "status", handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "quota", http.StatusTooManyRequests) }},
		{name: "api_error", handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"error":"Invalid API key"}`)) }},
		{name: "bad_json", handler: func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			if _, err := New(nil, Config{APIKey: "k", BaseURL: srv.URL}).Search(context.Background(), "q", "google_images"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSearchTimeoutAndKeyNotInError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(nil, Config{APIKey: "supersecret", BaseURL: srv.URL, SearchTimeout: 20 * time.Millisecond})
	_, err := c.Search(context.Background(), "q", "google_images")
	if err == nil {
		t.Fatalf("expected timeout")
	}
	if strings.Contains(err.Error(), "supersecret") {
		t.Fatalf("error leaks api key: %v", err)
	}
}

func TestValidateKey(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		want    bool
		wantErr bool
	}{
		{name: "ok", status: http.StatusOK, want: true},
		{name: "unauthorized", status: http.StatusUnauthorized, want: false},
		{name: "server_error", status: http.StatusBadGateway, want: false, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Query().Get("q") != "Test" || r.URL.Query().Get("engine") != "google_images" {
					t.Errorf("unexpected validation query %q", r.URL.RawQuery)
				}
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()
			got, err := New(nil, Config{APIKey: "k", BaseURL: srv.URL}).ValidateKey(context.Background())
			if got != tc.want || (err != nil) != tc.wantErr {
				t.Fatalf("ValidateKey()=%v,%v", got, err)
			}
		})
	}

	if ok, err := New(nil, Config{}).ValidateKey(context.Background()); ok || err != nil {
		t.Fatalf("empty key should be invalid without error, got %v,%v", ok, err)
	}
}
