package command

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

var ErrNotFound = errors.New("command not found in search path")

// SplitSearchPath splits a colon-delimited search path into its directories, in order.
// Empty elements are dropped, so "" and ":" yield no directories.
func SplitSearchPath(searchPath string) []string {
	var dirs []string
	for _, dir := range strings.Split(searchPath, ":") {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// Resolve returns the first dir + "/" + name in searchPath that the current process may execute.
//
// Unlike a shell, Resolve always joins name onto a directory, even when name already
// contains a slash, and an empty search path never matches anything.
// The result is only valid at the time of the check; exec may still fail later.
func Resolve(name, searchPath string) (string, error) {
	for _, dir := range SplitSearchPath(searchPath) {
		candidate := dir + "/" + name
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

func isExecutable(path string) bool {
	if unix.Access(path, unix.X_OK) != nil {
		return false
	}
	// directories pass the X_OK check but cannot be executed
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
