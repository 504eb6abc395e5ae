package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"tgwctl/cmd/tgwctl/ui"
	"tgwctl/internal/audit"
	"tgwctl/internal/config"
	"tgwctl/internal/warehouse"
)

// setupTest pins the package globals every RunE helper reads.
func setupTest(t *testing.T) {
	t.Helper()

	logger = zap.NewNop()
	styles = ui.NewStyles(ui.LightTheme())
	host = warehouse.HostPOSIX

	cfg = config.DefaultConfig()
	cfg.Warehouse.Root = "/mnt/c/AI_LLM_projects/ai_warehouse"
	cfg.Repo.Path = ""
	cfg.Repo.PlaybookPath = ""

	warehouseArg, repoArg, playbookArg = "", "", ""
	verbose = false
	doctorFix, doctorWatch, doctorInteractive = false, false, false
	doctorSkipEnv, doctorSkipLinks, doctorSkipAssets = false, false, false
}

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	_ = w.Close()
	os.Stdout = origOut
	return <-done
}

func TestApplyFlagOverrides(t *testing.T) {
	setupTest(t)

	warehouseArg = "/mnt/d/warehouse"
	repoArg = "/home/op/tgw"
	playbookArg = "/home/op/playbook"
	verbose = true
	applyFlagOverrides()

	if cfg.Warehouse.Root != "/mnt/d/warehouse" {
		t.Errorf("warehouse root = %q", cfg.Warehouse.Root)
	}
	if cfg.Repo.Path != "/home/op/tgw" {
		t.Errorf("repo path = %q", cfg.Repo.Path)
	}
	if cfg.Repo.PlaybookPath != "/home/op/playbook" {
		t.Errorf("playbook path = %q", cfg.Repo.PlaybookPath)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestPathSpecs(t *testing.T) {
	setupTest(t)
	cfg.Repo.Path = "/home/op/tgw"
	cfg.Repo.PlaybookPath = "/home/op/playbook"

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	specs := pathSpecs(layout)
	byName := map[string]audit.PathSpec{}
	for _, s := range specs {
		byName[s.Name] = s
	}

	root, ok := byName["warehouse_root"]
	if !ok || !root.Required || !root.AutoCreate {
		t.Errorf("warehouse_root spec wrong: %+v", root)
	}
	if s := byName["hf_home"]; s.Required {
		t.Errorf("hf_home must be advisory: %+v", s)
	}
	repo, ok := byName["tgw_repo"]
	if !ok || !repo.Required || repo.AutoCreate {
		t.Errorf("tgw_repo spec wrong: %+v", repo)
	}
	if _, ok := byName["playbook_root"]; !ok {
		t.Error("playbook_root spec missing")
	}
}

func TestPathSpecsWithoutRepo(t *testing.T) {
	setupTest(t)

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	for _, s := range pathSpecs(layout) {
		if s.Name == "tgw_repo" {
			t.Error("tgw_repo spec present without a configured checkout")
		}
	}
}

func TestEnvSpecs(t *testing.T) {
	setupTest(t)
	cfg.Repo.Path = "/home/op/tgw"

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	critical := map[string]bool{}
	for _, e := range envSpecs(layout) {
		critical[e.Name] = e.Critical
	}

	if !critical[warehouse.EnvWarehouse] || !critical[warehouse.EnvRepo] {
		t.Errorf("warehouse and repo env vars must be critical: %v", critical)
	}
	if critical[warehouse.EnvHFHome] || critical[warehouse.EnvTorchHome] {
		t.Errorf("cache env vars must be advisory: %v", critical)
	}
}

func TestLinkCheckLifecycle(t *testing.T) {
	setupTest(t)
	cfg.Warehouse.Root = t.TempDir()
	cfg.Repo.Path = t.TempDir()

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	c := linkCheck(layout, false)
	if c.Status != audit.StatusError || c.Detail != "missing" {
		t.Fatalf("expected missing link error, got %+v", c)
	}

	c = linkCheck(layout, true)
	if c.Status != audit.StatusRepaired {
		t.Fatalf("expected repair, got %+v", c)
	}

	c = linkCheck(layout, false)
	if c.Status != audit.StatusOK {
		t.Fatalf("expected ok after repair, got %+v", c)
	}
	if !strings.Contains(c.Detail, layout.ModelsDir) {
		t.Errorf("detail should name the target, got %q", c.Detail)
	}
}

func TestCollectChecksSkips(t *testing.T) {
	setupTest(t)
	cfg.Warehouse.Root = t.TempDir()
	cfg.Repo.Path = t.TempDir()

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	categories := func(res audit.Result) map[string]bool {
		out := map[string]bool{}
		for _, c := range res.Checks {
			out[c.Category] = true
		}
		return out
	}

	all := categories(collectChecks(layout, false))
	for _, want := range []string{"dirs", "env", "links", "assets"} {
		if !all[want] {
			t.Errorf("full audit missing category %q (got %v)", want, all)
		}
	}

	doctorSkipEnv, doctorSkipLinks, doctorSkipAssets = true, true, true
	trimmed := categories(collectChecks(layout, false))
	for _, gone := range []string{"env", "links", "assets"} {
		if trimmed[gone] {
			t.Errorf("category %q present despite skip flag", gone)
		}
	}
	if !trimmed["dirs"] {
		t.Error("dir checks must always run")
	}
}

func TestPrintReportShowsHints(t *testing.T) {
	setupTest(t)

	var res audit.Result
	res.Append(audit.Check{
		Category: "dirs", Name: "models_dir", Path: "/nope",
		Status: audit.StatusError, Detail: "missing", Hint: "run with --fix to create it",
	})

	out := captureOutput(t, func() { printReport(res) })

	if !strings.Contains(out, "Warehouse audit") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "Remediation:") || !strings.Contains(out, "run with --fix") {
		t.Errorf("missing remediation hints:\n%s", out)
	}
}

func TestPrintExports(t *testing.T) {
	setupTest(t)
	cfg.Repo.Path = "/home/op/tgw"

	layout, err := cfg.Layout(host)
	if err != nil {
		t.Fatal(err)
	}

	out := captureOutput(t, func() { printExports(layout) })

	if !strings.Contains(out, `export AI_WAREHOUSE="/mnt/c/AI_LLM_projects/ai_warehouse"`) {
		t.Errorf("missing warehouse export:\n%s", out)
	}
	if !strings.Contains(out, `export TGW_REPO="/home/op/tgw"`) {
		t.Errorf("missing repo export:\n%s", out)
	}

	// Sorted output keeps eval diffs stable.
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i-1] > lines[i] {
			t.Errorf("exports not sorted: %q before %q", lines[i-1], lines[i])
		}
	}
}

func TestWantCategory(t *testing.T) {
	emitOnly = nil
	if !wantCategory("presets") {
		t.Error("empty --only must mean everything")
	}

	emitOnly = []string{"docs"}
	defer func() { emitOnly = nil }()
	if wantCategory("presets") || !wantCategory("docs") {
		t.Error("--only docs must restrict to docs")
	}
}

func TestModelsLinkPath(t *testing.T) {
	setupTest(t)

	if _, err := modelsLinkPath(); err == nil {
		t.Error("expected an error without a configured checkout")
	}

	cfg.Repo.Path = "/home/op/tgw"
	p, err := modelsLinkPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/home/op/tgw", "models") {
		t.Errorf("link path = %q", p)
	}
}
