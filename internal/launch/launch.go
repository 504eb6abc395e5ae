// Package launch starts the web application as a subprocess and polls
// its HTTP API until it reports ready. The poll is bounded: a fixed
// number of attempts at a fixed interval, then give up and say "not yet
// ready" instead of hanging. Beyond that single readiness endpoint there
// is no protocol interaction with the application.
package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options describes one launch of the application.
type Options struct {
	// RepoDir is the application checkout; the command runs there.
	RepoDir string
	// Command is the base argv, e.g. {"python3", "server.py"}.
	Command []string
	// ModelsDir is passed as --model-dir when set.
	ModelsDir string

	API        bool
	Listen     bool
	ListenPort int
	NoWebUI    bool

	// Extra is appended verbatim after the assembled flags.
	Extra []string

	// KillOnTimeout tears the process group down when the readiness
	// poll gives up. Default is to leave the application running and
	// just report not-ready.
	KillOnTimeout bool
}

// Argv assembles the full command line.
func (o Options) Argv() []string {
	argv := append([]string{}, o.Command...)
	if o.ModelsDir != "" {
		argv = append(argv, "--model-dir", o.ModelsDir)
	}
	if o.API {
		argv = append(argv, "--api")
	}
	if o.Listen {
		argv = append(argv, "--listen")
	}
	if o.ListenPort > 0 {
		argv = append(argv, "--listen-port", strconv.Itoa(o.ListenPort))
	}
	if o.NoWebUI {
		argv = append(argv, "--nowebui")
	}
	return append(argv, o.Extra...)
}

// ReadyCheck bounds the startup poll.
type ReadyCheck struct {
	// URL is polled with GET; any 2xx answer means ready.
	URL      string
	Attempts int
	Interval time.Duration
}

// TimeoutError reports that the application did not become reachable
// within the polling window. The subprocess may well still be starting.
type TimeoutError struct {
	URL      string
	Attempts int
	Interval time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("application not reachable at %s after %d attempts %s apart: not yet ready",
		e.URL, e.Attempts, e.Interval)
}

// Launcher runs the application subprocess and its readiness poll.
type Launcher struct {
	log    *zap.Logger
	client *http.Client
}

func NewLauncher(log *zap.Logger) *Launcher {
	return &Launcher{
		log:    log,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// WaitReady polls rc.URL until a 2xx answer, the attempt budget runs
// out, or ctx is cancelled.
func (l *Launcher) WaitReady(ctx context.Context, rc ReadyCheck) error {
	for attempt := 1; attempt <= rc.Attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rc.URL, nil)
		if err != nil {
			return fmt.Errorf("readiness request: %w", err)
		}
		resp, err := l.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				l.log.Info("application ready",
					zap.String("url", rc.URL), zap.Int("attempt", attempt))
				return nil
			}
			l.log.Debug("not ready yet",
				zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
		} else {
			l.log.Debug("not reachable yet", zap.Int("attempt", attempt))
		}

		if attempt == rc.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rc.Interval):
		}
	}
	return &TimeoutError{URL: rc.URL, Attempts: rc.Attempts, Interval: rc.Interval}
}

// Run starts the application, streams its output through the logger,
// waits for readiness, then blocks until the process exits or ctx is
// cancelled (which tears down the whole process group).
func (l *Launcher) Run(ctx context.Context, opts Options, rc ReadyCheck) error {
	argv := opts.Argv()
	if len(argv) == 0 {
		return fmt.Errorf("empty launch command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.RepoDir
	setupProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	l.log.Info("launching application",
		zap.Strings("argv", argv), zap.String("dir", opts.RepoDir))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", argv[0], err)
	}

	// Pump both pipes before Wait; Wait closes them.
	var pumps errgroup.Group
	pumps.Go(func() error {
		sc := bufio.NewScanner(stdout)
		for sc.Scan() {
			l.log.Info("tgw", zap.String("line", sc.Text()))
		}
		return nil
	})
	pumps.Go(func() error {
		sc := bufio.NewScanner(stderr)
		for sc.Scan() {
			l.log.Warn("tgw", zap.String("line", sc.Text()))
		}
		return nil
	})

	exited := make(chan error, 1)
	go func() {
		_ = pumps.Wait()
		exited <- cmd.Wait()
	}()

	if rc.Attempts > 0 {
		if err := l.WaitReady(ctx, rc); err != nil {
			var te *TimeoutError
			if errors.As(err, &te) && !opts.KillOnTimeout {
				// Not fatal: the application may just be slow to start.
				l.log.Warn("readiness poll gave up, leaving the application running",
					zap.String("url", rc.URL))
			} else {
				_ = killProcessGroup(cmd)
				<-exited
				return err
			}
		}
	}

	select {
	case err := <-exited:
		if err != nil {
			return fmt.Errorf("application exited: %w", err)
		}
		l.log.Info("application exited cleanly")
		return nil
	case <-ctx.Done():
		l.log.Info("shutting down application")
		if err := killProcessGroup(cmd); err != nil {
			l.log.Warn("kill failed", zap.Error(err))
		}
		<-exited
		return ctx.Err()
	}
}
