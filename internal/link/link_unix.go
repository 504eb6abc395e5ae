//go:build !windows

package link

import "os"

// makeDirLink creates a directory symlink. POSIX needs no special
// privilege or link flavor.
func makeDirLink(linkPath, targetPath string) error {
	return os.Symlink(targetPath, linkPath)
}
