package warehouse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPathKind reports a string that is neither a native absolute
// path nor a recognized foreign drive-letter path. Callers wrap it with
// the offending input; match with errors.Is.
var ErrInvalidPathKind = errors.New("unrecognized path syntax")

// pathKind classifies the syntax of an input path.
type pathKind int

const (
	kindInvalid  pathKind = iota
	kindPosix             // /home/user/x (no drive prefix)
	kindMount             // /mnt/c/x (WSL mount convention)
	kindSlash             // /c/x (Git Bash convention)
	kindWindows           // C:\x or C:/x
)

// classify inspects the path syntax. For the kinds that carry a drive
// letter it also returns the lower-cased letter and the remainder of the
// path with forward slashes and no leading separator.
func classify(p string) (kind pathKind, drive byte, rest string) {
	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		tail := p[2:]
		if tail != "" && tail[0] != '\\' && tail[0] != '/' {
			return kindInvalid, 0, ""
		}
		return kindWindows, lower(p[0]), trimSlashes(strings.ReplaceAll(tail, `\`, "/"))
	}
	if !strings.HasPrefix(p, "/") {
		return kindInvalid, 0, ""
	}
	segs := strings.Split(strings.Trim(p, "/"), "/")
	if len(segs) >= 2 && segs[0] == "mnt" && len(segs[1]) == 1 && isDriveLetter(segs[1][0]) {
		return kindMount, lower(segs[1][0]), strings.Join(segs[2:], "/")
	}
	// A single-letter first segment is the Git Bash drive convention,
	// not a real POSIX directory (/c/Users/... means C:\Users\...).
	if len(segs) >= 1 && len(segs[0]) == 1 && isDriveLetter(segs[0][0]) {
		return kindSlash, lower(segs[0][0]), strings.Join(segs[1:], "/")
	}
	return kindPosix, 0, ""
}

// ToNative rewrites p into the host's native absolute-path syntax.
// Native input passes through unchanged (modulo separator cleanup);
// recognized foreign drive syntax is translated; anything else fails
// with ErrInvalidPathKind.
func ToNative(p string, host HostKind) (string, error) {
	p = strings.TrimSpace(p)
	kind, drive, rest := classify(p)
	if kind == kindInvalid {
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPathKind)
	}

	if host == HostWindows {
		switch kind {
		case kindWindows, kindMount, kindSlash:
			if rest == "" {
				return string(upper(drive)) + `:\`, nil
			}
			return string(upper(drive)) + `:\` + strings.ReplaceAll(rest, "/", `\`), nil
		default:
			// A bare POSIX path has no drive and no meaning on Windows.
			return "", fmt.Errorf("%q: %w", p, ErrInvalidPathKind)
		}
	}

	// POSIX and WSL share the /mnt/<drive> convention for foreign paths.
	switch kind {
	case kindPosix, kindMount:
		return cleanPosix(p), nil
	case kindWindows, kindSlash:
		if rest == "" {
			return "/mnt/" + string(drive), nil
		}
		return "/mnt/" + string(drive) + "/" + rest, nil
	}
	return "", fmt.Errorf("%q: %w", p, ErrInvalidPathKind)
}

// ToWindows rewrites p into Windows drive-letter syntax. Only paths that
// carry drive information can be translated; a plain POSIX path fails
// with ErrInvalidPathKind.
func ToWindows(p string) (string, error) {
	kind, drive, rest := classify(strings.TrimSpace(p))
	switch kind {
	case kindWindows, kindMount, kindSlash:
		if rest == "" {
			return string(upper(drive)) + `:\`, nil
		}
		return string(upper(drive)) + `:\` + strings.ReplaceAll(rest, "/", `\`), nil
	case kindPosix:
		return "", fmt.Errorf("%q has no drive letter: %w", p, ErrInvalidPathKind)
	default:
		return "", fmt.Errorf("%q: %w", p, ErrInvalidPathKind)
	}
}

func cleanPosix(p string) string {
	segs := strings.Split(p, "/")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}

func trimSlashes(s string) string {
	return strings.Trim(s, "/")
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
