package files

import (
	"errors"
	"io/fs"
	"os"
)

// RemoveIfExists removes path. A path that is already gone is not an error.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// TypeOf returns the file type bits of path without following symlinks.
// exists is false when nothing is at path.
func TypeOf(path string) (typ fs.FileMode, exists bool, err error) {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return fi.Mode().Type(), true, nil
}

func TypeName(typ fs.FileMode) string {
	switch {
	case typ == 0:
		return "regular file"
	case typ&fs.ModeDir != 0:
		return "directory"
	case typ&fs.ModeNamedPipe != 0:
		return "FIFO"
	case typ&fs.ModeSocket != 0:
		return "socket"
	case typ&fs.ModeSymlink != 0:
		return "symlink"
	case typ&fs.ModeDevice != 0:
		return "device"
	}
	return "special file"
}
