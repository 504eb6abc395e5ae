//go:build windows

package link

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// makeDirLink creates a directory link. Symlinks need either admin
// rights or Developer Mode on Windows, so on a privilege failure we fall
// back to an NTFS junction via mklink /J, which any user may create.
func makeDirLink(linkPath, targetPath string) error {
	err := os.Symlink(targetPath, linkPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrPermission) {
		return err
	}

	out, jerr := exec.Command("cmd", "/c", "mklink", "/J", linkPath, targetPath).CombinedOutput()
	if jerr != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return errors.Join(err, errors.New(msg))
		}
		return errors.Join(err, jerr)
	}
	return nil
}
