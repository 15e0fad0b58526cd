package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// Markers that identify a knowledge base root.
const (
	SystemDirMarker = ".knowhub"
	DatabaseMarker  = "knowhub.db"
)

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("knowhub root not found")

// FindRoot looks upwards from startDir for a directory holding a
// .knowhub directory or a knowhub.db database and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDirMarker) || hasFile(dir, DatabaseMarker) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
