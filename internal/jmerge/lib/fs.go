package lib

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicFile is a temporary file created next to its destination. It only
// becomes visible under the destination name once Publish succeeds.
type atomicFile struct {
	*os.File
	destination string
	published   bool
}

func createAtomic(destination string) (*atomicFile, error) {
	dir, base := filepath.Split(destination)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return nil, err
	}
	return &atomicFile{File: tmp, destination: destination}, nil
}

// Publish syncs and closes the file, then renames it over the destination.
func (f *atomicFile) Publish() error {
	// Ensure the data is written to stable storage.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", f.Name(), err)
	}
	if err := f.Chmod(0644); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", f.Name(), err)
	}
	if err := os.Rename(f.Name(), f.destination); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", f.Name(), f.destination, err)
	}
	f.published = true
	return nil
}

// Discard removes the temporary file unless it was published. It is safe to
// call more than once.
func (f *atomicFile) Discard() {
	if f.published {
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
}
