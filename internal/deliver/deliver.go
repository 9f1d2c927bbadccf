// Package deliver turns a converted blob into a named file in the
// download directory.
package deliver

import (
	"fmt"
	"os"
	"path/filepath"
)

// Save writes blob to dir/filename via a temporary file in the same
// directory, renamed into place on success. The temporary file is
// removed on every failure path, so an aborted save never leaks a
// partial download. Returns the final path.
func Save(dir, filename string, blob []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(blob); err != nil {
		return "", fmt.Errorf("failed to write download: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close download: %w", err)
	}

	final := filepath.Join(dir, filepath.Base(filename))
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("failed to finalize download: %w", err)
	}
	committed = true
	return final, nil
}
