package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAllRequiredMissing(t *testing.T) {
	dir := t.TempDir()
	specs := []PathSpec{
		{Name: "warehouse root", Path: filepath.Join(dir, "warehouse"), Required: true, Category: "dirs"},
		{Name: "models dir", Path: filepath.Join(dir, "warehouse", "models"), Required: true, Category: "dirs"},
		{Name: "repo", Path: filepath.Join(dir, "tgw"), Required: true, Category: "dirs"},
	}

	res := Run(specs, nil, Options{})

	assert.Equal(t, 3, res.Errors)
	assert.True(t, res.Failed())
	require.Len(t, res.Checks, 3)
	for _, c := range res.Checks {
		assert.Equal(t, StatusError, c.Status)
		assert.Equal(t, "missing", c.Detail)
	}
}

// The aggregate failure flag must be true iff at least one required spec
// is missing; advisory misses alone never fail the run.
func TestRunFailureIffRequiredMiss(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "present")
	require.NoError(t, os.Mkdir(existing, 0755))

	t.Run("warnings only", func(t *testing.T) {
		res := Run([]PathSpec{
			{Name: "present", Path: existing, Required: true},
			{Name: "optional", Path: filepath.Join(dir, "nope"), Required: false},
		}, nil, Options{})
		assert.Equal(t, 1, res.Warnings)
		assert.Zero(t, res.Errors)
		assert.False(t, res.Failed())
	})

	t.Run("one required miss fails", func(t *testing.T) {
		res := Run([]PathSpec{
			{Name: "present", Path: existing, Required: true},
			{Name: "optional", Path: filepath.Join(dir, "nope"), Required: false},
			{Name: "gone", Path: filepath.Join(dir, "gone"), Required: true},
		}, nil, Options{})
		assert.Equal(t, 1, res.Errors)
		assert.True(t, res.Failed())
	})
}

func TestRunFixRepairsExactlyTheFixable(t *testing.T) {
	dir := t.TempDir()
	specs := []PathSpec{
		{Name: "cache", Path: filepath.Join(dir, "cache"), Required: false, AutoCreate: true},
		{Name: "models", Path: filepath.Join(dir, "models"), Required: true, AutoCreate: true},
		{Name: "checkout", Path: filepath.Join(dir, "tgw"), Required: true}, // not creatable
	}

	fixed := Run(specs, nil, Options{Fix: true})
	assert.Equal(t, 2, fixed.Repaired)
	assert.Equal(t, 1, fixed.Errors)

	// Immediately re-auditing without fix must show zero missing
	// entries for everything auto-creatable.
	after := Run(specs, nil, Options{})
	require.Len(t, after.Checks, 3)
	assert.Equal(t, StatusOK, after.Checks[0].Status)
	assert.Equal(t, StatusOK, after.Checks[1].Status)
	assert.Equal(t, StatusError, after.Checks[2].Status)
}

func TestRunWithoutFixIsReadOnly(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "cache")
	specs := []PathSpec{{Name: "cache", Path: missing, AutoCreate: true}}

	for i := 0; i < 2; i++ {
		res := Run(specs, nil, Options{})
		assert.Equal(t, 1, res.Warnings)
	}
	_, err := os.Stat(missing)
	assert.True(t, os.IsNotExist(err), "audit without --fix must not create anything")
}

func TestRunFixFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	res := Run([]PathSpec{
		{Name: "under file", Path: filepath.Join(blocker, "sub"), Required: true, AutoCreate: true},
	}, nil, Options{Fix: true})

	require.Len(t, res.Checks, 1)
	assert.Equal(t, StatusError, res.Checks[0].Status)
	assert.Contains(t, res.Checks[0].Detail, "fix failed")
	assert.Zero(t, res.Repaired)
}

func TestEnvChecks(t *testing.T) {
	t.Run("unset critical is an error with an export hint", func(t *testing.T) {
		res := Run(nil, []EnvVarSpec{
			{Name: "TGWCTL_TEST_UNSET", Expected: "/mnt/c/warehouse", Critical: true},
		}, Options{})
		require.Len(t, res.Checks, 1)
		c := res.Checks[0]
		assert.Equal(t, StatusError, c.Status)
		assert.Equal(t, "env", c.Category)
		assert.Equal(t, "export TGWCTL_TEST_UNSET=/mnt/c/warehouse", c.Hint)
		assert.True(t, res.Failed())
	})

	t.Run("unset advisory is a warning", func(t *testing.T) {
		res := Run(nil, []EnvVarSpec{{Name: "TGWCTL_TEST_UNSET2"}}, Options{})
		assert.Equal(t, 1, res.Warnings)
		assert.False(t, res.Failed())
	})

	t.Run("drift warns and never corrects", func(t *testing.T) {
		t.Setenv("TGWCTL_TEST_DRIFT", "/somewhere/else")
		res := Run(nil, []EnvVarSpec{
			{Name: "TGWCTL_TEST_DRIFT", Expected: "/mnt/c/warehouse"},
		}, Options{Fix: true})
		require.Len(t, res.Checks, 1)
		assert.Equal(t, StatusWarning, res.Checks[0].Status)
		assert.Contains(t, res.Checks[0].Detail, "/somewhere/else")
		assert.Equal(t, "/somewhere/else", os.Getenv("TGWCTL_TEST_DRIFT"))
		assert.False(t, res.Failed())
	})

	t.Run("matching value is ok", func(t *testing.T) {
		t.Setenv("TGWCTL_TEST_OK", "/mnt/c/warehouse")
		res := Run(nil, []EnvVarSpec{
			{Name: "TGWCTL_TEST_OK", Expected: "/mnt/c/warehouse", Critical: true},
		}, Options{})
		assert.Equal(t, StatusOK, res.Checks[0].Status)
		assert.False(t, res.Failed())
	})
}

func TestFileSpecs(t *testing.T) {
	dir := t.TempDir()
	preset := filepath.Join(dir, "presets", "playbook_default.json")

	t.Run("missing file warns and is never auto-created", func(t *testing.T) {
		res := Run([]PathSpec{
			{Name: "default preset", Path: preset, File: true, AutoCreate: true, Hint: "run tgwctl emit"},
		}, nil, Options{Fix: true})
		c := res.Checks[0]
		assert.Equal(t, StatusWarning, c.Status)
		assert.Equal(t, "run tgwctl emit", c.Hint)
		_, err := os.Stat(preset)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("present file is ok", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Dir(preset), 0755))
		require.NoError(t, os.WriteFile(preset, []byte("{}"), 0644))
		res := Run([]PathSpec{{Name: "default preset", Path: preset, File: true}}, nil, Options{})
		assert.Equal(t, StatusOK, res.Checks[0].Status)
	})

	t.Run("directory where a file belongs is flagged", func(t *testing.T) {
		res := Run([]PathSpec{{Name: "presets dir", Path: filepath.Join(dir, "presets"), File: true}}, nil, Options{})
		c := res.Checks[0]
		assert.Equal(t, StatusWarning, c.Status)
		assert.Contains(t, c.Detail, "directory")
	})
}

func TestRunIDs(t *testing.T) {
	a := Run(nil, nil, Options{})
	b := Run(nil, nil, Options{})
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}
