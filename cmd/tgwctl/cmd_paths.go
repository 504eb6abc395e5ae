// Package main implements the paths commands. This file handles layout
// printing, shell exports, and path syntax translation.
package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"tgwctl/internal/warehouse"
)

var (
	pathsExport        bool
	translateToWindows bool
)

// pathsCmd prints the resolved warehouse layout
var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the resolved warehouse layout",
	Long: `Resolves the warehouse layout for this host and prints every
location tgwctl works with.

With --export, prints shell export lines instead:

  eval "$(tgwctl paths --export)"`,
	RunE: runPaths,
}

// pathsTranslateCmd converts between path conventions
var pathsTranslateCmd = &cobra.Command{
	Use:   "translate <path>",
	Short: "Convert a path between host conventions",
	Long: `Translates foreign path syntax into this host's convention, e.g.
C:\AI_LLM_projects\x becomes /mnt/c/AI_LLM_projects/x under WSL.
With --windows the translation goes the other way.`,
	Args: cobra.ExactArgs(1),
	RunE: runPathsTranslate,
}

func init() {
	pathsCmd.Flags().BoolVar(&pathsExport, "export", false, "Print export lines for eval")
	pathsTranslateCmd.Flags().BoolVar(&translateToWindows, "windows", false, "Translate to Windows drive-letter syntax")
	pathsCmd.AddCommand(pathsTranslateCmd)
}

func runPaths(cmd *cobra.Command, args []string) error {
	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	if pathsExport {
		printExports(layout)
		return nil
	}

	fmt.Println(styles.Title.Render("📦 Warehouse layout") + "  " + styles.Muted.Render("("+host.String()+")"))
	rows := []struct{ name, path string }{
		{"warehouse root", layout.Root},
		{"models", layout.ModelsDir},
		{"HF home", layout.HFHome},
		{"HF hub cache", layout.HubCache},
		{"transformers cache", layout.TransformersCache},
		{"datasets cache", layout.DatasetsCache},
		{"torch home", layout.TorchHome},
	}
	for _, r := range rows {
		fmt.Printf("  %-20s %s\n", r.name, r.path)
	}

	if cfg.Repo.Path != "" {
		fmt.Printf("  %-20s %s\n", "tgw checkout", cfg.Repo.Path)
	}
	if cfg.Repo.PlaybookPath != "" {
		fmt.Printf("  %-20s %s\n", "playbook", cfg.Repo.PlaybookPath)
	}
	return nil
}

// printExports emits eval-able export lines, sorted for stable output.
func printExports(layout warehouse.Layout) {
	env := layout.ExpectedEnv()
	if cfg.Repo.Path != "" {
		env[warehouse.EnvRepo] = cfg.Repo.Path
	}
	if cfg.Repo.PlaybookPath != "" {
		env[warehouse.EnvPlaybook] = cfg.Repo.PlaybookPath
	}

	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("export %s=%q\n", name, env[name])
	}
}

func runPathsTranslate(cmd *cobra.Command, args []string) error {
	var out string
	var err error
	if translateToWindows {
		out, err = warehouse.ToWindows(args[0])
	} else {
		out, err = warehouse.ToNative(args[0], host)
	}
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
