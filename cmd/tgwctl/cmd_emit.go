// Package main implements the emit commands. This file handles writing
// the playbook's presets, character cards, and docs into place.
package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"tgwctl/internal/assets"
)

var (
	emitOnly    []string
	docsPreview bool
)

// emitCmd writes all asset categories
var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Write sampling presets, character cards, and playbook docs",
	Long: `Regenerates the playbook's assets:

  presets     - sampling preset JSON files in $TGW_REPO/presets/
  characters  - character card YAML files in $TGW_REPO/characters/
  docs        - markdown guides in $PLAYBOOK_ROOT/docs/

Assets are generated, never user-owned: existing files are overwritten
unconditionally. A document that fails to write is reported and the rest
are still emitted.`,
	RunE: runEmit,
}

// emitDocsCmd writes or previews just the docs
var emitDocsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Write the playbook docs, or render them with --preview",
	RunE:  runEmitDocs,
}

func init() {
	emitCmd.Flags().StringSliceVar(&emitOnly, "only", nil, "Restrict to categories: presets, characters, docs")
	emitDocsCmd.Flags().BoolVar(&docsPreview, "preview", false, "Render to the terminal instead of writing")
	emitCmd.AddCommand(emitDocsCmd)
}

func wantCategory(cat string) bool {
	if len(emitOnly) == 0 {
		return true
	}
	for _, o := range emitOnly {
		if o == cat {
			return true
		}
	}
	return false
}

func runEmit(cmd *cobra.Command, args []string) error {
	for _, o := range emitOnly {
		switch o {
		case "presets", "characters", "docs":
		default:
			return fmt.Errorf("unknown category %q (valid: presets, characters, docs)", o)
		}
	}

	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}

	var docs []assets.Document

	if wantCategory("presets") || wantCategory("characters") {
		repo, err := requireRepo()
		if err != nil {
			return err
		}
		if wantCategory("presets") {
			pd, err := assets.PresetDocs(repo)
			if err != nil {
				return err
			}
			docs = append(docs, pd...)
		}
		if wantCategory("characters") {
			cd, err := assets.CharacterDocs(repo)
			if err != nil {
				return err
			}
			docs = append(docs, cd...)
		}
	}

	if wantCategory("docs") {
		docs = append(docs, assets.GuideDocs(cfg.Repo.PlaybookPath, layout)...)
	}

	return emitDocuments(docs)
}

func emitDocuments(docs []assets.Document) error {
	written, failures := assets.NewEmitter(logger).EmitAll(docs)

	for _, p := range written {
		fmt.Println("✅ wrote " + styles.Muted.Render(p))
	}
	for _, f := range failures {
		fmt.Printf("❌ %s %s\n", f.Path, styles.Error.Render("("+f.Err.Error()+")"))
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d documents failed", len(failures), len(docs))
	}
	fmt.Printf("\n%d documents written\n", len(written))
	return nil
}

func runEmitDocs(cmd *cobra.Command, args []string) error {
	layout, err := cfg.Layout(host)
	if err != nil {
		return err
	}
	docs := assets.GuideDocs(cfg.Repo.PlaybookPath, layout)

	if !docsPreview {
		return emitDocuments(docs)
	}

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		)
	} else {
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(100),
		)
	}
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}

	for _, d := range docs {
		out, err := renderer.Render(string(d.Body))
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", d.Path, err)
		}
		fmt.Print(out)
	}
	return nil
}
