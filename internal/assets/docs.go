package assets

import (
	"fmt"
	"sort"
	"strings"

	"tgwctl/internal/warehouse"
)

// WarehouseGuide renders the operator doc describing the shared
// warehouse layout and the environment it implies.
func WarehouseGuide(l warehouse.Layout) string {
	var sb strings.Builder
	sb.WriteString("# Shared Model Warehouse\n\n")
	sb.WriteString("One warehouse, many tool installs. Model weights and framework\n")
	sb.WriteString("caches live here once; every checkout links or points at it.\n\n")

	sb.WriteString("## Layout\n\n")
	sb.WriteString("```\n")
	sb.WriteString(l.Root + "\n")
	sb.WriteString("├── models/llm                      shared model weights\n")
	sb.WriteString("└── cache/\n")
	sb.WriteString("    ├── huggingface                 HF_HOME\n")
	sb.WriteString("    │   ├── hub                     HUGGINGFACE_HUB_CACHE\n")
	sb.WriteString("    │   ├── transformers            TRANSFORMERS_CACHE\n")
	sb.WriteString("    │   └── datasets                HF_DATASETS_CACHE\n")
	sb.WriteString("    └── torch                       TORCH_HOME\n")
	sb.WriteString("```\n\n")

	sb.WriteString("## Environment\n\n")
	sb.WriteString("Add these to the shell profile (or `eval \"$(tgwctl paths --export)\"`):\n\n")
	sb.WriteString("```sh\n")
	env := l.ExpectedEnv()
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "export %s=%s\n", name, env[name])
	}
	sb.WriteString("```\n\n")

	sb.WriteString("## Linking a checkout\n\n")
	sb.WriteString("`tgwctl link` points the checkout's `models` directory at\n")
	fmt.Fprintf(&sb, "`%s`. An existing real directory is renamed to a timestamped\n", l.ModelsDir)
	sb.WriteString("`*.backup-*` sibling first; nothing is deleted. Re-running is a\n")
	sb.WriteString("no-op once the link is in place.\n")
	return sb.String()
}

// PresetCheatSheet renders a quick-reference table for the shipped
// presets.
func PresetCheatSheet(presets []*PresetDocument) string {
	var sb strings.Builder
	sb.WriteString("# Sampling Preset Cheat Sheet\n\n")
	sb.WriteString("Presets are regenerated by `tgwctl emit`; edit the tool, not the\n")
	sb.WriteString("files.\n\n")

	sb.WriteString("| preset | temperature | top_p | top_k | repetition_penalty | max_new_tokens |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, p := range presets {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n", p.Name,
			cell(p, "temperature"), cell(p, "top_p"), cell(p, "top_k"),
			cell(p, "repetition_penalty"), cell(p, "max_new_tokens"))
	}
	sb.WriteString("\n")

	for _, p := range presets {
		fmt.Fprintf(&sb, "**%s**: %s\n\n", p.Name, p.Description)
	}
	return sb.String()
}

func cell(p *PresetDocument, key string) string {
	v, ok := p.Get(key)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%v", v)
}
