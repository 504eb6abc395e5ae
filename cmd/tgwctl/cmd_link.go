// Package main implements the link commands. This file handles ensuring
// and inspecting the checkout's models symlink.
package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tgwctl/internal/link"
)

// linkCmd ensures the models link points into the warehouse
var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Ensure the checkout's models dir is a link into the warehouse",
	Long: `Makes $TGW_REPO/models a directory link to <warehouse>/models/llm.

An existing correct link is left alone. A stale link is recreated. A
real directory is first renamed to a timestamped backup next to it;
nothing is ever deleted.`,
	RunE: runLinkEnsure,
}

// linkStatusCmd inspects without changing anything
var linkStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the models link state without changing anything",
	RunE:  runLinkStatus,
}

func init() {
	linkCmd.AddCommand(linkStatusCmd)
}

func modelsLinkPath() (string, error) {
	repo, err := requireRepo()
	if err != nil {
		return "", err
	}
	return filepath.Join(repo, "models"), nil
}

func runLinkEnsure(cmd *cobra.Command, args []string) error {
	linkPath, err := modelsLinkPath()
	if err != nil {
		return err
	}
	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	res, err := link.Ensure(linkPath, layout.ModelsDir)
	if err != nil {
		var ce *link.CreateError
		if errors.As(err, &ce) && ce.Permission() {
			fmt.Println(styles.Error.Render("❌ creating the link was denied"))
			fmt.Println("   Retry from an elevated shell, or enable Developer Mode so")
			fmt.Println("   symlink creation does not need administrator rights.")
		}
		return err
	}

	switch res.Action {
	case link.ActionNone:
		fmt.Printf("✅ models link already correct: %s -> %s\n", res.State.Path, res.State.Target)
	case link.ActionCreated:
		fmt.Printf("✅ created %s -> %s\n", res.State.Path, res.State.Target)
	case link.ActionRepaired:
		fmt.Printf("🔧 repaired stale link: %s -> %s\n", res.State.Path, res.State.Target)
	case link.ActionBackedUp:
		fmt.Printf("🔧 moved existing directory to %s\n", res.BackupPath)
		fmt.Printf("✅ created %s -> %s\n", res.State.Path, res.State.Target)
	}
	return nil
}

func runLinkStatus(cmd *cobra.Command, args []string) error {
	linkPath, err := modelsLinkPath()
	if err != nil {
		return err
	}
	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	st, err := link.Inspect(linkPath)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", linkPath, err)
	}

	fmt.Printf("path:   %s\n", st.Path)
	fmt.Printf("kind:   %s\n", st.Kind)
	if st.Target != "" {
		fmt.Printf("target: %s\n", st.Target)
	}

	switch {
	case st.Kind == link.KindLink && st.Target == layout.ModelsDir:
		fmt.Println(styles.Success.Render("✅ link is correct"))
	case st.Kind == link.KindNone:
		fmt.Println(styles.Warning.Render("⚠️  link is missing, run tgwctl link"))
	case st.Kind == link.KindLink:
		fmt.Println(styles.Warning.Render(fmt.Sprintf("⚠️  link is stale, want %s", layout.ModelsDir)))
	default:
		fmt.Println(styles.Warning.Render("⚠️  not a link; tgwctl link will back it up first"))
	}
	return nil
}
