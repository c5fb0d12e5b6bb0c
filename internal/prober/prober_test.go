package prober

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediapeek/twitchpeek/internal/config"
	"github.com/mediapeek/twitchpeek/internal/domain"
)

func testConfig() config.Poster {
	return config.Poster{
		ProbeTimeout: 5 * time.Second,
		UserAgent:    "test-agent",
	}
}

func TestHTTPProber_Probe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method = %s, want HEAD", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q, want %q", ua, "test-agent")
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Length", "4096")
	}))
	defer server.Close()

	p := NewHTTPProber(testConfig())
	result, err := p.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if !result.Accessible {
		t.Error("result should be accessible")
	}
	if result.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", result.ContentType)
	}
	if result.ContentLength != 4096 {
		t.Errorf("ContentLength = %d, want 4096", result.ContentLength)
	}
}

func TestHTTPProber_Probe_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewHTTPProber(testConfig())
	result, err := p.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if result.Accessible {
		t.Error("404 should not be accessible")
	}
	if result.Error == "" {
		t.Error("result should carry an error description")
	}
}

func TestHTTPProber_Probe_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	p := NewHTTPProber(testConfig())
	result, err := p.Probe(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("transport errors should be reported in the result, got %v", err)
	}

	if result.Accessible {
		t.Error("unreachable URL should not be accessible")
	}
}

func TestHTTPProber_SelectFirstLive(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
	}))
	defer good.Close()

	p := NewHTTPProber(testConfig())

	url, err := p.SelectFirstLive(context.Background(), []string{bad.URL, good.URL, bad.URL + "/never"})
	if err != nil {
		t.Fatalf("SelectFirstLive failed: %v", err)
	}
	if url != good.URL {
		t.Errorf("url = %q, want %q", url, good.URL)
	}
}

func TestHTTPProber_SelectFirstLive_AllDead(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer bad.Close()

	p := NewHTTPProber(testConfig())

	_, err := p.SelectFirstLive(context.Background(), []string{bad.URL, bad.URL})
	if !errors.Is(err, domain.ErrNoPoster) {
		t.Errorf("err = %v, want ErrNoPoster", err)
	}
}

func TestHTTPProber_SelectFirstLive_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewHTTPProber(testConfig())
	_, err := p.SelectFirstLive(ctx, []string{"http://127.0.0.1:0/poster.jpg"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRetryWithCheck_StopsOnPermanentError(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0

	_, err := RetryWithCheck(context.Background(), RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}, func() (string, error) {
		calls++
		return "", permanent
	}, func(err error) bool {
		return !errors.Is(err, permanent)
	})

	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_SucceedsAfterFailure(t *testing.T) {
	calls := 0

	got, err := Retry(context.Background(), RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      10 * time.Millisecond,
		BackoffFactor: 2.0,
	}, func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if got != 42 {
		t.Errorf("got = %d, want 42", got)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
