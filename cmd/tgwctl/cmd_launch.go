// Package main implements the launch command. This file handles starting
// the text-generation-webui server and waiting for its API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tgwctl/internal/launch"
)

var (
	launchCommand       string
	launchListen        bool
	launchListenPort    int
	launchNoWebUI       bool
	launchAPIBase       string
	launchAttempts      int
	launchInterval      string
	launchKillOnTimeout bool
)

// launchCmd starts the server subprocess
var launchCmd = &cobra.Command{
	Use:   "launch [-- extra server args]",
	Short: "Start text-generation-webui and wait for its API",
	Long: `Runs the server (default: python3 server.py in the checkout) with the
resolved models dir and polls its OpenAI-compatible API until it answers.

The poll is bounded; if the server is not ready within the attempt
budget, tgwctl reports it and by default leaves the server running.
Ctrl-C tears down the whole process group.

Arguments after -- are passed to the server verbatim:

  tgwctl launch -- --load-in-8bit`,
	RunE: runLaunch,
}

func init() {
	launchCmd.Flags().StringVar(&launchCommand, "command", "", "Launch command (default from config)")
	launchCmd.Flags().BoolVar(&launchListen, "listen", false, "Listen on all interfaces")
	launchCmd.Flags().IntVar(&launchListenPort, "listen-port", 0, "Web UI listen port (0 uses config)")
	launchCmd.Flags().BoolVar(&launchNoWebUI, "nowebui", false, "API only, no web UI")
	launchCmd.Flags().StringVar(&launchAPIBase, "api-base", "", "API base URL polled for readiness")
	launchCmd.Flags().IntVar(&launchAttempts, "ready-attempts", 0, "Readiness poll attempts (0 uses config)")
	launchCmd.Flags().StringVar(&launchInterval, "ready-interval", "", "Readiness poll interval, e.g. 2s")
	launchCmd.Flags().BoolVar(&launchKillOnTimeout, "kill-on-timeout", false, "Stop the server when the readiness poll gives up")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	repo, err := requireRepo()
	if err != nil {
		return err
	}
	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	if launchCommand != "" {
		cfg.Launch.Command = strings.Fields(launchCommand)
	}
	if launchListen {
		cfg.Launch.Listen = true
	}
	if launchListenPort > 0 {
		cfg.Launch.ListenPort = launchListenPort
	}
	if launchNoWebUI {
		cfg.Launch.NoWebUI = true
	}
	if launchAPIBase != "" {
		cfg.Launch.APIBase = launchAPIBase
	}
	if launchAttempts > 0 {
		cfg.Launch.ReadyAttempts = launchAttempts
	}
	if launchInterval != "" {
		cfg.Launch.ReadyInterval = launchInterval
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := launch.Options{
		RepoDir:       repo,
		Command:       cfg.Launch.Command,
		ModelsDir:     layout.ModelsDir,
		API:           cfg.Launch.API,
		Listen:        cfg.Launch.Listen,
		ListenPort:    cfg.Launch.ListenPort,
		NoWebUI:       cfg.Launch.NoWebUI,
		Extra:         args,
		KillOnTimeout: launchKillOnTimeout,
	}
	rc := launch.ReadyCheck{
		URL:      strings.TrimSuffix(cfg.Launch.APIBase, "/") + "/v1/models",
		Attempts: cfg.Launch.ReadyAttempts,
		Interval: cfg.GetReadyInterval(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("🚀 launching in %s\n", repo)
	fmt.Println(styles.Muted.Render("   " + strings.Join(opts.Argv(), " ")))

	err = launch.NewLauncher(logger).Run(ctx, opts, rc)

	var te *launch.TimeoutError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &te):
		fmt.Println(styles.Error.Render("❌ " + te.Error()))
		fmt.Println("   Large models can take minutes to load; raise --ready-attempts")
		fmt.Println("   or --ready-interval if the server just needs more time.")
		return err
	case errors.Is(err, context.Canceled):
		fmt.Println("👋 server stopped")
		return nil
	default:
		return err
	}
}
