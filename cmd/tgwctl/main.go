// Package main implements tgwctl, the warehouse reconciler CLI for
// text-generation-webui. It keeps one shared model warehouse, the
// environment that points at it, the checkout's models link, and the
// playbook assets all in agreement.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tgwctl/cmd/tgwctl/ui"
	"tgwctl/internal/config"
	"tgwctl/internal/warehouse"
)

var (
	// Global flags
	cfgPath      string
	verbose      bool
	warehouseArg string
	repoArg      string
	playbookArg  string

	// Resolved once in PersistentPreRunE
	cfg    *config.Config
	host   warehouse.HostKind
	styles ui.Styles
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tgwctl",
	Short: "tgwctl - warehouse reconciler for text-generation-webui",
	Long: `tgwctl reconciles a shared model-weight warehouse with a local
text-generation-webui checkout.

One warehouse on the big drive holds model weights and framework caches;
every checkout reaches them through environment variables and a single
models symlink. tgwctl audits that arrangement, repairs it, emits the
playbook's presets and docs, and launches the server.

Typical session:
  tgwctl doctor --fix     # create missing dirs, repair the models link
  tgwctl emit             # write presets, characters, and docs
  tgwctl launch           # start the server and wait for its API`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		host = warehouse.DetectHost()
		styles = ui.DefaultStyles()

		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		applyFlagOverrides()

		logger.Debug("configuration resolved",
			zap.String("host", host.String()),
			zap.String("warehouse", cfg.Warehouse.Root),
			zap.String("repo", cfg.Repo.Path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// applyFlagOverrides gives explicit flags the last word, above env vars
// and the config file.
func applyFlagOverrides() {
	if warehouseArg != "" {
		cfg.Warehouse.Root = warehouseArg
	}
	if repoArg != "" {
		cfg.Repo.Path = repoArg
	}
	if playbookArg != "" {
		cfg.Repo.PlaybookPath = playbookArg
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
}

// requireRepo returns the configured checkout path or an actionable error.
func requireRepo() (string, error) {
	if cfg.Repo.Path == "" {
		return "", fmt.Errorf("no text-generation-webui checkout configured (set %s, repo.path, or --repo)", warehouse.EnvRepo)
	}
	return cfg.Repo.Path, nil
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
func stdoutIsTerminal() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&warehouseArg, "warehouse", "", "Warehouse root (overrides AI_WAREHOUSE and config)")
	rootCmd.PersistentFlags().StringVar(&repoArg, "repo", "", "text-generation-webui checkout (overrides TGW_REPO and config)")
	rootCmd.PersistentFlags().StringVar(&playbookArg, "playbook", "", "Playbook workspace (overrides PLAYBOOK_ROOT and config)")

	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
