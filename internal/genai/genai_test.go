package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticSource struct {
	cfg   ModelConfig
	err   error
	calls int
}

func (s *staticSource) FetchModelConfig(ctx context.Context) (ModelConfig, error) {
	s.calls++
	return s.cfg, s.err
}

func TestConfigCacheTTL(t *testing.T) {
	src := &staticSource{cfg: ModelConfig{Model: "m1", MaxTokens: 100, LightweightModel: "l1", LightweightMaxTokens: 50}}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewConfigCache(src)
	cache.Now = func() time.Time { return now }

	ctx := context.Background()

	if got := cache.Get(ctx); got.Model != "m1" {
		t.Fatalf("model = %q, want m1", got.Model)
	}
	if src.calls != 1 {
		t.Fatalf("calls = %d, want 1", src.calls)
	}

	// Within the TTL the cached value is served without a fetch.
	now = now.Add(4 * time.Minute)
	cache.Get(ctx)
	if src.calls != 1 {
		t.Errorf("calls = %d, want 1 (cache hit expected)", src.calls)
	}

	// Past the TTL the source is consulted again.
	now = now.Add(2 * time.Minute)
	src.cfg.Model = "m2"
	if got := cache.Get(ctx); got.Model != "m2" {
		t.Errorf("model = %q, want m2 after refresh", got.Model)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestConfigCacheFallsBackOnError(t *testing.T) {
	src := &staticSource{err: errors.New("boom")}
	cache := NewConfigCache(src)

	got := cache.Get(context.Background())
	if got.Model != DefaultModelConfig().Model {
		t.Errorf("model = %q, want hardcoded default", got.Model)
	}
	if got.MaxTokens != 6000 {
		t.Errorf("max tokens = %d, want 6000", got.MaxTokens)
	}
}

func TestConfigCacheKeepsLastGoodValue(t *testing.T) {
	src := &staticSource{cfg: ModelConfig{Model: "good", MaxTokens: 100, LightweightModel: "l", LightweightMaxTokens: 10}}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewConfigCache(src)
	cache.Now = func() time.Time { return now }

	cache.Get(context.Background())

	src.err = errors.New("remote down")
	now = now.Add(10 * time.Minute)
	if got := cache.Get(context.Background()); got.Model != "good" {
		t.Errorf("model = %q, want last good value", got.Model)
	}
}

func TestConfigCacheNilSource(t *testing.T) {
	cache := NewConfigCache(nil)
	if got := cache.Get(context.Background()); got.Model == "" {
		t.Error("nil source should serve defaults")
	}
}

func TestCompleteProfiles(t *testing.T) {
	var got apiRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"hello"}]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", NewConfigCache(nil))
	client.BaseURL = srv.URL

	ctx := context.Background()

	text, err := client.Complete(ctx, Request{Profile: ProfileStandard, Prompt: "extract"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != "hello" {
		t.Errorf("text = %q, want hello", text)
	}
	if got.MaxTokens != 6000 || got.Temperature != 0.1 {
		t.Errorf("standard profile sent max_tokens=%d temp=%v", got.MaxTokens, got.Temperature)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}

	if _, err := client.Complete(ctx, Request{Profile: ProfileLightweight, Prompt: "classify"}); err != nil {
		t.Fatalf("Complete lightweight: %v", err)
	}
	if got.MaxTokens != 1024 {
		t.Errorf("lightweight profile sent max_tokens=%d, want 1024", got.MaxTokens)
	}
}

func TestCompleteServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", NewConfigCache(nil))
	client.BaseURL = srv.URL

	if _, err := client.Complete(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestCompleteMissingKey(t *testing.T) {
	client := NewClient("", NewConfigCache(nil))
	if _, err := client.Complete(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error without API key")
	}
}
