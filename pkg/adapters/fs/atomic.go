package fs

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// TempFilePrefix is the prefix used for temporary atomic write files.
	TempFilePrefix = "knowhub-tmp-"
)

// stagedFile is a fully written temporary file waiting to replace its target.
type stagedFile struct {
	tmp    string
	target string
}

// stageFile writes data to a temporary file next to filename.
// Nothing is visible under filename until commit is called.
func stageFile(filename string, data []byte, perm os.FileMode) (stagedFile, error) {
	dir := filepath.Dir(filename)

	// Same directory as the target so the rename stays atomic.
	tmpFile, err := os.CreateTemp(dir, TempFilePrefix+"*")
	if err != nil {
		return stagedFile{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	staged := stagedFile{tmp: tmpFile.Name(), target: filename}

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		staged.discard()
		return stagedFile{}, fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		staged.discard()
		return stagedFile{}, fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		staged.discard()
		return stagedFile{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(staged.tmp, perm); err != nil {
		staged.discard()
		return stagedFile{}, fmt.Errorf("failed to chmod temp file: %w", err)
	}

	return staged, nil
}

func (s stagedFile) commit() error {
	if err := os.Rename(s.tmp, s.target); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", s.target, err)
	}
	return nil
}

func (s stagedFile) discard() {
	_ = os.Remove(s.tmp)
}

// writeFileAtomic writes data to a file atomically by writing to a temp file
// and then renaming it to the target filename.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	staged, err := stageFile(filename, data, perm)
	if err != nil {
		return err
	}
	if err := staged.commit(); err != nil {
		staged.discard()
		return err
	}
	return nil
}

// commitAll renames every staged file into place. Files staged after a
// failed rename are discarded.
func commitAll(files []stagedFile) error {
	for i, f := range files {
		if err := f.commit(); err != nil {
			for _, rest := range files[i:] {
				rest.discard()
			}
			return err
		}
	}
	return nil
}
