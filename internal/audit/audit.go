// Package audit walks a declarative list of expected paths and
// environment variables, classifies each as satisfied, missing-but-
// fixable, or missing-critical, and optionally repairs the fixable ones.
// With Fix disabled a run is strictly read-only and safe to repeat.
package audit

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// PathSpec declares one expected filesystem path. Constructed from
// configuration at program start and never mutated.
type PathSpec struct {
	// Name is the logical label shown in reports.
	Name string
	// Path is the absolute location to check.
	Path string
	// Required escalates a miss to an error instead of a warning.
	Required bool
	// AutoCreate allows --fix to create the directory.
	AutoCreate bool
	// File means a regular file is expected rather than a directory.
	// File specs are never auto-created; emission owns them.
	File bool
	// Category groups checks for --skip-<category> and report output.
	Category string
	// Hint is the remediation suggestion printed on a miss.
	Hint string
}

// EnvVarSpec declares one expected environment variable.
type EnvVarSpec struct {
	Name string
	// Expected, when non-empty, is compared against the live value.
	// A difference is reported as drift and never corrected.
	Expected string
	// Critical escalates an unset variable to an error.
	Critical bool
}

// Status classifies the outcome of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusRepaired
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusRepaired:
		return "repaired"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "ok"
	}
}

// Check is one line of the audit report.
type Check struct {
	Category string
	Name     string
	Path     string // empty for environment checks
	Status   Status
	Detail   string
	Hint     string
}

// Result aggregates one audit run. Created fresh per invocation; the
// error tally alone decides the process exit code.
type Result struct {
	RunID    string
	Checks   []Check
	Repaired int
	Warnings int
	Errors   int
}

// Failed reports whether the run must exit non-zero: true iff at least
// one required path was missing or a critical env var was unset.
func (r *Result) Failed() bool { return r.Errors > 0 }

// Append records a check and updates the tallies. Callers composing a
// report from several sources (path audit plus link or asset checks)
// go through here so Failed stays consistent.
func (r *Result) Append(c Check) {
	switch c.Status {
	case StatusRepaired:
		r.Repaired++
	case StatusWarning:
		r.Warnings++
	case StatusError:
		r.Errors++
	}
	r.Checks = append(r.Checks, c)
}

// Options controls a single audit run.
type Options struct {
	// Fix creates missing auto-creatable directories.
	Fix bool
}

// Run audits specs and envs in order. Per-item failures are recorded,
// never propagated; the run always completes and reports everything.
func Run(specs []PathSpec, envs []EnvVarSpec, opts Options) Result {
	res := Result{RunID: uuid.NewString()}
	for _, spec := range specs {
		res.Append(checkPath(spec, opts.Fix))
	}
	for _, env := range envs {
		res.Append(checkEnv(env))
	}
	return res
}

func checkPath(spec PathSpec, fix bool) Check {
	c := Check{Category: spec.Category, Name: spec.Name, Path: spec.Path, Hint: spec.Hint}

	fi, err := os.Stat(spec.Path)
	switch {
	case err == nil && spec.File && fi.IsDir():
		c.Detail = "expected a file, found a directory"
	case err == nil && !spec.File && !fi.IsDir():
		c.Detail = "expected a directory, found a file"
	case err == nil:
		c.Status = StatusOK
		return c
	case os.IsNotExist(err):
		c.Detail = "missing"
	default:
		c.Detail = err.Error()
	}

	if fix && spec.AutoCreate && !spec.File {
		if err := os.MkdirAll(spec.Path, 0755); err != nil {
			c.Detail = fmt.Sprintf("fix failed: %v", err)
		} else {
			c.Status = StatusRepaired
			c.Detail = "created"
			return c
		}
	}

	if spec.Required {
		c.Status = StatusError
	} else {
		c.Status = StatusWarning
	}
	if c.Hint == "" && spec.AutoCreate {
		c.Hint = "run with --fix to create it"
	}
	return c
}

func checkEnv(env EnvVarSpec) Check {
	c := Check{Category: "env", Name: env.Name}

	value, ok := os.LookupEnv(env.Name)
	if !ok || value == "" {
		c.Detail = "not set"
		if env.Critical {
			c.Status = StatusError
		} else {
			c.Status = StatusWarning
		}
		if env.Expected != "" {
			c.Hint = fmt.Sprintf("export %s=%s", env.Name, env.Expected)
		}
		return c
	}

	if env.Expected != "" && value != env.Expected {
		// Value drift is reported, never auto-corrected: the operator's
		// environment may intentionally differ.
		c.Status = StatusWarning
		c.Detail = fmt.Sprintf("set to %s, expected %s", value, env.Expected)
		return c
	}

	c.Status = StatusOK
	return c
}
