package export

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir saves exported files into a directory on disk. It is the file-save
// host used by the ICS download.
type Dir string

// SaveFile writes data to name inside the directory, creating it if needed.
// The MIME type is not needed on a file system.
func (d Dir) SaveFile(name, _ string, data []byte) error {
	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(d.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Path returns where name would be written.
func (d Dir) Path(name string) string {
	return filepath.Join(string(d), name)
}
