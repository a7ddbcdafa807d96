package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wagatehq/wagate/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(nil, config.GraphConfig{
		BaseURL:       srv.URL,
		Version:       "v18.0",
		PhoneNumberID: "555",
		AccessToken:   "token-1",
	})
}

func TestResolveMediaURL(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v18.0/media-1" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("auth header = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example.com/media-1"})
	})

	url, err := client.ResolveMediaURL(context.Background(), "media-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://cdn.example.com/media-1" {
		t.Fatalf("url = %q", url)
	}
}

func TestResolveMediaURLFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusForbidden)
			},
		},
		{
			name: "response without url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"id": "media-1"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := testClient(t, tt.handler)
			_, err := client.ResolveMediaURL(context.Background(), "media-1")
			if !errors.Is(err, ErrMediaLookup) {
				t.Fatalf("expected ErrMediaLookup, got %v", err)
			}
		})
	}
}

func TestSendText(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v18.0/555/messages" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.SendText(context.Background(), "15550002222", "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["to"] != "15550002222" {
		t.Fatalf("unexpected payload: %v", gotBody)
	}
}

func TestSendTextUpstreamStatus(t *testing.T) {
	t.Parallel()

	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	err := client.SendText(context.Background(), "1", "x")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d", statusErr.Code)
	}
}
