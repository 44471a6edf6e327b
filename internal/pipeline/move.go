package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MoveToDestination relocates src into destDir (created on demand), keeping
// its base name and replacing any existing file. Returns the new path.
func MoveToDestination(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}
	dst := filepath.Join(destDir, filepath.Base(src))
	if err := moveFile(src, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// moveFile renames src to dst, falling back to copy+delete when the rename
// crosses a filesystem boundary.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
