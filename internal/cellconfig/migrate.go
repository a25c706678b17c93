package cellconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MigrateKey moves a key file left in a legacy key directory into the
// cell tmp dir, unless the cell already has one there.
func (s *Synthesizer) MigrateKey() error {
	target := s.cfg.KeyFile()
	if _, err := os.Stat(target); err == nil {
		return nil
	}
	for _, dir := range s.KeyDirs {
		legacy := filepath.Join(dir, s.cfg.Cell.KeyFileName())
		if _, err := os.Stat(legacy); err != nil {
			continue
		}
		s.logf("WARN: Migrating key file from %s to %s", legacy, target)
		if err := moveFile(legacy, target); err != nil {
			return fmt.Errorf("failed to migrate key file: %w", err)
		}
		return os.Chmod(target, 0o400)
	}
	return nil
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
