package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateExtractsKnownResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "flat result", body: `{"result":"hello"}`, want: "hello"},
		{name: "response field", body: `{"response":"hi there"}`, want: "hi there"},
		{name: "completion choices", body: `{"choices":[{"text":"pick me"}]}`, want: "pick me"},
		{name: "nested result", body: `{"result":{"response":"nested"}}`, want: "nested"},
		{name: "unknown shape falls back to raw body", body: `{"weird":true}`, want: `{"weird":true}`},
	}
	for _, tc := range tests {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
				t.Errorf("%s: expected bearer credential, got %q", tc.name, auth)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(tc.body))
		}))

		client := NewAIClient(upstream.URL, "tok")
		got, err := client.Generate(context.Background(), "say hello")
		upstream.Close()
		if err != nil {
			t.Fatalf("%s: generate: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestGenerateUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	client := NewAIClient(upstream.URL, "tok")
	if _, err := client.Generate(context.Background(), "say hello"); err == nil {
		t.Fatalf("expected error on upstream 500")
	}
}

func TestConfigured(t *testing.T) {
	if NewAIClient("", "").Configured() {
		t.Fatalf("empty client must not report configured")
	}
	if NewAIClient("http://example.test", "").Configured() {
		t.Fatalf("missing token must not report configured")
	}
	if !NewAIClient("http://example.test", "tok").Configured() {
		t.Fatalf("url and token present should report configured")
	}
}
