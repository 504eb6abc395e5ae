// Package main implements the doctor command: the path, environment,
// link, and asset audit with optional repair, watch, and interactive
// modes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tgwctl/cmd/tgwctl/ui"
	"tgwctl/internal/assets"
	"tgwctl/internal/audit"
	"tgwctl/internal/link"
	"tgwctl/internal/warehouse"
)

var (
	doctorFix         bool
	doctorWatch       bool
	doctorInteractive bool
	doctorSkipEnv     bool
	doctorSkipLinks   bool
	doctorSkipAssets  bool
)

// doctorCmd audits the warehouse arrangement
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Audit warehouse paths, environment, the models link, and assets",
	Long: `Checks that the warehouse arrangement is intact:

  dirs    - warehouse root, models dir, and framework cache directories
  env     - AI_WAREHOUSE, TGW_REPO, and the cache variables they imply
  links   - the checkout's models symlink into the warehouse
  assets  - the emitted presets, characters, and docs

Every check reports individually; the exit code is non-zero only when a
required path is missing or a critical variable is unset. Warnings
(advisory paths, value drift) never fail the run.

With --fix, missing cache directories are created and the models link is
repaired. Environment drift is reported but never corrected.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories and repair the models link")
	doctorCmd.Flags().BoolVar(&doctorWatch, "watch", false, "Stay running and re-audit when watched directories change")
	doctorCmd.Flags().BoolVar(&doctorInteractive, "interactive", false, "Browse the report in a scrollable TUI")
	doctorCmd.Flags().BoolVar(&doctorSkipEnv, "skip-env", false, "Skip environment variable checks")
	doctorCmd.Flags().BoolVar(&doctorSkipLinks, "skip-links", false, "Skip the models link check")
	doctorCmd.Flags().BoolVar(&doctorSkipAssets, "skip-assets", false, "Skip emitted asset checks")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if doctorWatch && doctorInteractive {
		return fmt.Errorf("--watch and --interactive are mutually exclusive")
	}

	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	if doctorInteractive {
		if stdoutIsTerminal() {
			return ui.RunReport(styles, func() audit.Result {
				return collectChecks(layout, doctorFix)
			})
		}
		logger.Debug("stdout is not a terminal, using plain output")
	}

	res := collectChecks(layout, doctorFix)
	printReport(res)

	if doctorWatch {
		return watchLoop(layout)
	}

	if res.Failed() {
		return fmt.Errorf("%d critical problem(s) found", res.Errors)
	}
	return nil
}

// ============================================================================
// CHECK ASSEMBLY
// ============================================================================

// collectChecks runs the full audit for the resolved layout: the
// declarative path and env specs first, then the link check on top.
func collectChecks(layout warehouse.Layout, fix bool) audit.Result {
	specs := pathSpecs(layout)
	if !doctorSkipAssets && cfg.Repo.Path != "" {
		specs = append(specs, assetSpecs(layout)...)
	}

	var envs []audit.EnvVarSpec
	if !doctorSkipEnv {
		envs = envSpecs(layout)
	}

	res := audit.Run(specs, envs, audit.Options{Fix: fix})

	if !doctorSkipLinks && cfg.Repo.Path != "" {
		res.Append(linkCheck(layout, fix))
	}
	return res
}

func pathSpecs(layout warehouse.Layout) []audit.PathSpec {
	specs := []audit.PathSpec{
		{Name: "warehouse_root", Path: layout.Root, Required: true, AutoCreate: true, Category: "dirs"},
		{Name: "models_dir", Path: layout.ModelsDir, Required: true, AutoCreate: true, Category: "dirs"},
		{Name: "hf_home", Path: layout.HFHome, AutoCreate: true, Category: "dirs"},
		{Name: "hub_cache", Path: layout.HubCache, AutoCreate: true, Category: "dirs"},
		{Name: "transformers_cache", Path: layout.TransformersCache, AutoCreate: true, Category: "dirs"},
		{Name: "datasets_cache", Path: layout.DatasetsCache, AutoCreate: true, Category: "dirs"},
		{Name: "torch_home", Path: layout.TorchHome, AutoCreate: true, Category: "dirs"},
	}

	if cfg.Repo.Path != "" {
		// A checkout cannot be conjured up by --fix.
		specs = append(specs, audit.PathSpec{
			Name:     "tgw_repo",
			Path:     cfg.Repo.Path,
			Required: true,
			Category: "dirs",
			Hint:     "clone text-generation-webui there, or point --repo at the checkout",
		})
	}
	if cfg.Repo.PlaybookPath != "" {
		specs = append(specs, audit.PathSpec{
			Name:       "playbook_root",
			Path:       cfg.Repo.PlaybookPath,
			AutoCreate: true,
			Category:   "dirs",
		})
	}
	return specs
}

func envSpecs(layout warehouse.Layout) []audit.EnvVarSpec {
	expected := layout.ExpectedEnv()
	return []audit.EnvVarSpec{
		{Name: warehouse.EnvWarehouse, Expected: expected[warehouse.EnvWarehouse], Critical: true},
		{Name: warehouse.EnvRepo, Expected: cfg.Repo.Path, Critical: true},
		{Name: warehouse.EnvPlaybook, Expected: cfg.Repo.PlaybookPath},
		{Name: warehouse.EnvHFHome, Expected: expected[warehouse.EnvHFHome]},
		{Name: warehouse.EnvHubCache, Expected: expected[warehouse.EnvHubCache]},
		{Name: warehouse.EnvTransformers, Expected: expected[warehouse.EnvTransformers]},
		{Name: warehouse.EnvDatasets, Expected: expected[warehouse.EnvDatasets]},
		{Name: warehouse.EnvTorchHome, Expected: expected[warehouse.EnvTorchHome]},
	}
}

func assetSpecs(layout warehouse.Layout) []audit.PathSpec {
	paths, err := assets.ExpectedPaths(cfg.Repo.Path, cfg.Repo.PlaybookPath, layout)
	if err != nil {
		logger.Warn("could not enumerate expected assets", zap.Error(err))
		return nil
	}

	specs := make([]audit.PathSpec, 0, len(paths))
	for _, p := range paths {
		specs = append(specs, audit.PathSpec{
			Name:     filepath.Base(p),
			Path:     p,
			File:     true,
			Category: "assets",
			Hint:     "run tgwctl emit",
		})
	}
	return specs
}

func linkCheck(layout warehouse.Layout, fix bool) audit.Check {
	linkPath := filepath.Join(cfg.Repo.Path, "models")
	c := audit.Check{Category: "links", Name: "models_link", Path: linkPath}

	if fix {
		res, err := link.Ensure(linkPath, layout.ModelsDir)
		if err != nil {
			c.Status = audit.StatusError
			c.Detail = err.Error()
			var ce *link.CreateError
			if errors.As(err, &ce) && ce.Permission() {
				c.Hint = "retry from an elevated shell, or enable Developer Mode so symlinks work unprivileged"
			}
			return c
		}
		if res.Action == link.ActionNone {
			c.Status = audit.StatusOK
			c.Detail = "-> " + res.State.Target
		} else {
			c.Status = audit.StatusRepaired
			c.Detail = res.Action.String()
			if res.BackupPath != "" {
				c.Detail += ", previous contents at " + res.BackupPath
			}
		}
		return c
	}

	st, err := link.Inspect(linkPath)
	switch {
	case err != nil:
		c.Status = audit.StatusError
		c.Detail = err.Error()
	case st.Kind == link.KindLink && st.Target == layout.ModelsDir:
		c.Status = audit.StatusOK
		c.Detail = "-> " + st.Target
	case st.Kind == link.KindNone:
		c.Status = audit.StatusError
		c.Detail = "missing"
		c.Hint = "run tgwctl link (or doctor --fix)"
	case st.Kind == link.KindLink:
		c.Status = audit.StatusError
		c.Detail = fmt.Sprintf("points at %s, want %s", st.Target, layout.ModelsDir)
		c.Hint = "run tgwctl link (or doctor --fix)"
	default:
		c.Status = audit.StatusError
		c.Detail = fmt.Sprintf("is a real %s, not a link", st.Kind)
		c.Hint = "run tgwctl link; existing contents are moved to a backup first"
	}
	return c
}

// ============================================================================
// REPORT OUTPUT
// ============================================================================

func printReport(res audit.Result) {
	fmt.Println(styles.Title.Render("🔍 Warehouse audit"))
	if verbose {
		fmt.Println(styles.Muted.Render("run " + res.RunID))
	}
	fmt.Println(styles.RenderDivider(64))

	for _, c := range res.Checks {
		fmt.Println(styles.RenderCheck(c))
	}

	fmt.Println(styles.RenderDivider(64))
	fmt.Println(styles.RenderSummary(res))

	var hints []string
	seen := map[string]bool{}
	for _, c := range res.Checks {
		if c.Status == audit.StatusOK || c.Hint == "" || seen[c.Hint] {
			continue
		}
		seen[c.Hint] = true
		hints = append(hints, c.Hint)
	}
	if len(hints) > 0 {
		fmt.Println()
		fmt.Println(styles.Bold.Render("Remediation:"))
		for _, h := range hints {
			fmt.Println("  • " + h)
		}
	}
}

// ============================================================================
// WATCH MODE
// ============================================================================

// watchLoop re-runs a read-only audit whenever the watched directories
// settle after a change. Runs until interrupted.
func watchLoop(layout warehouse.Layout) error {
	dirs := []string{layout.Root, filepath.Dir(layout.ModelsDir)}
	if cfg.Repo.Path != "" {
		dirs = append(dirs,
			cfg.Repo.Path,
			filepath.Join(cfg.Repo.Path, "presets"),
			filepath.Join(cfg.Repo.Path, "characters"),
		)
	}
	if cfg.Repo.PlaybookPath != "" {
		dirs = append(dirs, filepath.Join(cfg.Repo.PlaybookPath, "docs"))
	}

	w, err := audit.NewWatcher(dirs, 500*time.Millisecond, func(ctx context.Context) {
		fmt.Println()
		printReport(collectChecks(layout, false))
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	fmt.Println()
	fmt.Println(styles.Muted.Render(fmt.Sprintf("👀 watching %d directories, Ctrl-C to stop", len(w.Watched()))))

	<-ctx.Done()
	w.Stop()

	stats := w.Stats()
	fmt.Printf("\nstopped after %d events, %d re-audits\n", stats.Events, stats.Triggers)
	return nil
}
