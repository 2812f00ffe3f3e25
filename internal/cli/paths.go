package cli

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ResolvePath returns input as an absolute path, relative to the working
// directory. It never fails: if the working directory cannot be
// determined, the cleaned input is returned unchanged.
func ResolvePath(input string) string {
	abs, err := filepath.Abs(input)
	if err != nil {
		return filepath.Clean(input)
	}
	return abs
}

// ResolveExistingFilePath resolves input with ResolvePath and checks that
// it names an existing regular file. Directories, sockets, devices and
// dangling symlinks are rejected.
//
// It is called from flag values while arguments are parsed, so a bad path
// stops the command before any of its work begins.
func ResolveExistingFilePath(input string) (string, error) {
	resolved := ResolvePath(input)
	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", errors.Errorf("expected '%s' file to exist", resolved)
	}
	return resolved, nil
}
