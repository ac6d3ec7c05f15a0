package audiocache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/craigybabyj/landing-judge/internal/fsutil"
)

// DiskStore implements core.ArtifactStore on a local directory. Artifact
// files are written once and never modified, so readers need no
// coordination.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the artifact directory if needed and returns a store
// over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	err := os.MkdirAll(dir, fsutil.DirPermissions)
	if err != nil {
		return nil, fmt.Errorf("failed to create artifact directory '%s': %w", dir, err)
	}

	return &DiskStore{dir: dir}, nil
}

// Save writes one artifact under the store directory.
func (d *DiskStore) Save(name string, data []byte) error {
	path := filepath.Join(d.dir, name)

	err := os.WriteFile(path, data, fsutil.FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to write artifact '%s': %w", path, err)
	}

	return nil
}

// Exists reports whether the named artifact is present on disk.
func (d *DiskStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(d.dir, name))

	return err == nil
}

// Dir returns the artifact directory, used to mount the static file handler.
func (d *DiskStore) Dir() string {
	return d.dir
}
