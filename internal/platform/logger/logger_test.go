package logger

import "testing"

func TestSanitizeValueRedactsKeys(t *testing.T) {
	cases := []struct {
		key  string
		val  any
		want any
	}{
		{key: "serp_api_key", val: "abc123", want: "[REDACTED]"},
		{key: "authorization", val: "Bearer x", want: "[REDACTED]"},
		{key: "topic", val: "graph databases", want: "graph databases"},
		{key: "url", val: "https://serpapi.com/search.json?q=x&api_key=SECRET&engine=bing_images", want: "https://serpapi.com/search.json?q=x&api_key=[REDACTED]&engine=bing_images"},
		{key: "url", val: "https://serpapi.com/search.json?api_key=SECRET", want: "https://serpapi.com/search.json?api_key=[REDACTED]"},
	}
	for _, tc := range cases {
		if got := sanitizeValue(tc.key, tc.val); got != tc.want {
			t.Fatalf("sanitizeValue(%q): want=%v got=%v", tc.key, tc.want, got)
		}
	}
}

func TestHashValueIsStableAndShort(t *testing.T) {
	a := hashValue("10.0.0.1")
	b := hashValue("10.0.0.1")
	if a != b {
		t.Fatalf("hash not stable: %q vs %q", a, b)
	}
	if len(a) != len("hash:")+12 {
		t.Fatalf("unexpected hash length: %q", a)
	}
}
