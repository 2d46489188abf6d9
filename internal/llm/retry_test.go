package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("502")}},
		MockResponse{Content: json.RawMessage(`"ok"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("expected success after retry: %v", err)
	}
	if string(resp.Content) != `"ok"` {
		t.Errorf("Content = %s", resp.Content)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestRetryRateLimitRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Millisecond}},
		MockResponse{Content: json.RawMessage(`"ok"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected success after rate limit retry: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount())
	}
}

func TestRetryNotConfiguredNeverRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrNotConfigured{Provider: "gemini"}},
		MockResponse{Content: json.RawMessage(`"never reached"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var notCfg *ErrNotConfigured
	if !errors.As(err, &notCfg) {
		t.Fatalf("expected *ErrNotConfigured, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1 (no retry)", mock.CallCount())
	}
}

func TestRetryMaxTokensNeverRetried(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{}})
	p := WithRetry(mock, fastRetryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestRetryInvalidResponseOnlyOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json")}},
		MockResponse{Err: &ErrInvalidResponse{Err: errors.New("bad json again")}},
		MockResponse{Content: json.RawMessage(`"never reached"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var invResp *ErrInvalidResponse
	if !errors.As(err, &invResp) {
		t.Fatalf("expected *ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2 (single retry for invalid response)", mock.CallCount())
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Content: json.RawMessage(`"too late"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected *ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("CallCount = %d, want MaxAttempts (3)", mock.CallCount())
	}
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Second}},
		MockResponse{Content: json.RawMessage(`"never reached"`)},
	)
	p := WithRetry(mock, fastRetryConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
