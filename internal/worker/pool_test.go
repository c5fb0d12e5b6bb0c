package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingWarmer struct {
	mu         sync.Mutex
	warmed     map[string]int
	lastMargin time.Duration
	err        error
}

func newRecordingWarmer() *recordingWarmer {
	return &recordingWarmer{warmed: make(map[string]int)}
}

func (w *recordingWarmer) WarmChannel(ctx context.Context, login string, margin time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warmed[login]++
	w.lastMargin = margin
	return w.err
}

func (w *recordingWarmer) count(login string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.warmed[login]
}

func (w *recordingWarmer) margin() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastMargin
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPool_WarmsChannelsOnStartup(t *testing.T) {
	warmer := newRecordingWarmer()
	pool := NewPool(Config{
		Workers:  2,
		Interval: time.Hour, // only the startup pass should run
		Channels: []string{"shroud", "lirik"},
	}, warmer, testLogger())

	pool.Start()
	defer pool.Stop(time.Second)

	deadline := time.After(2 * time.Second)
	for warmer.count("shroud") == 0 || warmer.count("lirik") == 0 {
		select {
		case <-deadline:
			t.Fatalf("channels not warmed in time: %v", warmer.warmed)
		case <-time.After(10 * time.Millisecond):
		}
	}

	if got := warmer.margin(); got != time.Hour {
		t.Errorf("warm margin = %v, want the tick interval", got)
	}
}

func TestPool_ReWarmsOnTick(t *testing.T) {
	warmer := newRecordingWarmer()
	pool := NewPool(Config{
		Workers:  1,
		Interval: 20 * time.Millisecond,
		Channels: []string{"shroud"},
	}, warmer, testLogger())

	pool.Start()
	defer pool.Stop(time.Second)

	deadline := time.After(2 * time.Second)
	for warmer.count("shroud") < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected repeated warmups, got %d", warmer.count("shroud"))
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPool_StopIsGraceful(t *testing.T) {
	warmer := newRecordingWarmer()
	pool := NewPool(Config{
		Workers:  2,
		Interval: time.Hour,
		Channels: []string{"shroud"},
	}, warmer, testLogger())

	pool.Start()

	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestPool_WarmupErrorsDoNotStopWorkers(t *testing.T) {
	warmer := newRecordingWarmer()
	warmer.err = errors.New("probe failed")

	pool := NewPool(Config{
		Workers:  1,
		Interval: 20 * time.Millisecond,
		Channels: []string{"shroud"},
	}, warmer, testLogger())

	pool.Start()
	defer pool.Stop(time.Second)

	deadline := time.After(2 * time.Second)
	for warmer.count("shroud") < 2 {
		select {
		case <-deadline:
			t.Fatalf("worker should keep running after errors, got %d warmups", warmer.count("shroud"))
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPool_NoChannelsStaysIdle(t *testing.T) {
	pool := NewPool(Config{Workers: 2, Interval: time.Millisecond}, newRecordingWarmer(), testLogger())

	pool.Start()

	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Stop of idle pool failed: %v", err)
	}
}
