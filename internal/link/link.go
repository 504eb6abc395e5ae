// Package link creates and repairs the directory link that points a
// local models directory at the shared warehouse. The platform backend
// (POSIX symlink vs Windows junction) is selected at build time; call
// sites never branch on OS.
//
// The one rule that matters: an existing real directory at the link path
// is never deleted. It is renamed to a timestamped backup in the same
// parent before the link is created.
package link

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Kind classifies what currently occupies a link path.
type Kind int

const (
	// KindNone means nothing exists at the path.
	KindNone Kind = iota
	// KindDir is a real directory (not a link).
	KindDir
	// KindLink is a symlink or junction.
	KindLink
	// KindFile is a regular file.
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "directory"
	case KindLink:
		return "link"
	case KindFile:
		return "file"
	default:
		return "absent"
	}
}

// State describes a link path as found on disk. Target is only set for
// KindLink and holds the resolved (absolute) link target.
type State struct {
	Path   string
	Target string
	Kind   Kind
}

// Action records what Ensure did to reach the desired state.
type Action int

const (
	// ActionNone: the link already pointed at the target; nothing touched.
	ActionNone Action = iota
	// ActionCreated: nothing existed; the link was created fresh.
	ActionCreated
	// ActionRepaired: a stale link pointed elsewhere and was replaced.
	ActionRepaired
	// ActionBackedUp: a real directory or file was renamed aside first.
	ActionBackedUp
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionRepaired:
		return "repaired"
	case ActionBackedUp:
		return "backed-up"
	default:
		return "unchanged"
	}
}

// Result is the outcome of one Ensure call.
type Result struct {
	State      State
	Action     Action
	BackupPath string // set when Action is ActionBackedUp
}

// ErrTargetMissing reports that the link target does not exist and could
// not be auto-created.
var ErrTargetMissing = errors.New("link target missing")

// CreateError wraps a failure to establish the link. Permission failures
// are retryable by the operator (re-run elevated), not fatal to the rest
// of a reconciliation run.
type CreateError struct {
	Link   string
	Target string
	Err    error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("create link %s -> %s: %v", e.Link, e.Target, e.Err)
}

func (e *CreateError) Unwrap() error { return e.Err }

// Permission reports whether the failure was a privilege problem.
func (e *CreateError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// Inspect reports what currently occupies path without following it.
// Junctions surface as symlinks through Lstat/Readlink.
func Inspect(path string) (State, error) {
	st := State{Path: path}
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("inspect %s: %w", path, err)
	}
	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		st.Kind = KindLink
		target, err := os.Readlink(path)
		if err != nil {
			return st, fmt.Errorf("readlink %s: %w", path, err)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		st.Target = filepath.Clean(target)
	case fi.IsDir():
		st.Kind = KindDir
	default:
		st.Kind = KindFile
	}
	return st, nil
}

// Ensure makes linkPath resolve to targetPath. Both must be absolute.
// Idempotent on the success path: a second identical call touches
// nothing and returns the same state.
func Ensure(linkPath, targetPath string) (Result, error) {
	targetPath = filepath.Clean(targetPath)

	if err := os.MkdirAll(targetPath, 0755); err != nil {
		return Result{}, &CreateError{Link: linkPath, Target: targetPath,
			Err: fmt.Errorf("%w: %v", ErrTargetMissing, err)}
	}

	st, err := Inspect(linkPath)
	if err != nil {
		return Result{}, err
	}

	switch st.Kind {
	case KindNone:
		if err := create(linkPath, targetPath); err != nil {
			return Result{}, err
		}
		return finish(linkPath, ActionCreated, "")

	case KindLink:
		if st.Target == targetPath {
			return Result{State: st, Action: ActionNone}, nil
		}
		// Stale link: safe to drop, only the pointer is lost.
		if err := os.Remove(linkPath); err != nil {
			return Result{}, &CreateError{Link: linkPath, Target: targetPath, Err: err}
		}
		if err := create(linkPath, targetPath); err != nil {
			return Result{}, err
		}
		return finish(linkPath, ActionRepaired, "")

	default: // KindDir, KindFile: real user data, move it aside
		backup := backupName(linkPath)
		if err := os.Rename(linkPath, backup); err != nil {
			return Result{}, &CreateError{Link: linkPath, Target: targetPath,
				Err: fmt.Errorf("backup to %s: %w", backup, err)}
		}
		if err := create(linkPath, targetPath); err != nil {
			return Result{}, err
		}
		return finish(linkPath, ActionBackedUp, backup)
	}
}

func create(linkPath, targetPath string) error {
	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return &CreateError{Link: linkPath, Target: targetPath, Err: err}
	}
	if err := makeDirLink(linkPath, targetPath); err != nil {
		return &CreateError{Link: linkPath, Target: targetPath, Err: err}
	}
	return nil
}

func finish(linkPath string, action Action, backup string) (Result, error) {
	st, err := Inspect(linkPath)
	if err != nil {
		return Result{}, err
	}
	return Result{State: st, Action: action, BackupPath: backup}, nil
}

// backupName builds a timestamped sibling name for the displaced
// occupant. On a same-second collision a short random suffix is added.
func backupName(path string) string {
	name := path + ".backup-" + time.Now().Format("20060102-150405")
	if _, err := os.Lstat(name); err == nil {
		name += "-" + uuid.NewString()[:8]
	}
	return name
}
