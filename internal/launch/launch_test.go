package launch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestArgv(t *testing.T) {
	t.Run("all flags", func(t *testing.T) {
		opts := Options{
			Command:    []string{"python3", "server.py"},
			ModelsDir:  "/mnt/c/warehouse/models/llm",
			API:        true,
			Listen:     true,
			ListenPort: 7860,
			NoWebUI:    true,
			Extra:      []string{"--verbose"},
		}
		assert.Equal(t, []string{
			"python3", "server.py",
			"--model-dir", "/mnt/c/warehouse/models/llm",
			"--api", "--listen", "--listen-port", "7860", "--nowebui",
			"--verbose",
		}, opts.Argv())
	})

	t.Run("bare command", func(t *testing.T) {
		opts := Options{Command: []string{"python3", "server.py"}}
		assert.Equal(t, []string{"python3", "server.py"}, opts.Argv())
	})
}

func TestWaitReadyEventualSuccess(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	err := NewLauncher(zap.NewNop()).WaitReady(context.Background(), ReadyCheck{
		URL:      ts.URL + "/v1/models",
		Attempts: 10,
		Interval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestWaitReadyGivesUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	start := time.Now()
	err := NewLauncher(zap.NewNop()).WaitReady(context.Background(), ReadyCheck{
		URL:      ts.URL,
		Attempts: 4,
		Interval: 10 * time.Millisecond,
	})

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 4, te.Attempts)
	assert.Equal(t, ts.URL, te.URL)
	assert.Contains(t, te.Error(), "not yet ready")

	// Bounded: four attempts with three sleeps, not an open-ended hang.
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestWaitReadyCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	err := NewLauncher(zap.NewNop()).WaitReady(ctx, ReadyCheck{
		URL:      ts.URL,
		Attempts: 1000,
		Interval: 20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunShutsDownProcessGroup(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	err := NewLauncher(zap.NewNop()).Run(ctx, Options{
		Command: []string{"sleep", "30"},
	}, ReadyCheck{URL: ts.URL, Attempts: 3, Interval: 10 * time.Millisecond})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunKillOnTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	start := time.Now()
	err := NewLauncher(zap.NewNop()).Run(context.Background(), Options{
		Command:       []string{"sleep", "30"},
		KillOnTimeout: true,
	}, ReadyCheck{URL: ts.URL, Attempts: 2, Interval: 10 * time.Millisecond})

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	// The sleep must have been torn down, not waited out.
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunRejectsEmptyCommand(t *testing.T) {
	err := NewLauncher(zap.NewNop()).Run(context.Background(), Options{}, ReadyCheck{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty launch command")
}

func TestRunStartFailure(t *testing.T) {
	err := NewLauncher(zap.NewNop()).Run(context.Background(), Options{
		Command: []string{"/definitely/not/a/binary"},
	}, ReadyCheck{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start")
}
