package provisioning

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureTmpDir creates the per-cell generated files directory.
func EnsureTmpDir(ctx *Context) error {
	if err := os.MkdirAll(ctx.Config.TmpDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", ctx.Config.TmpDir(), err)
	}
	return nil
}

// RemoveTmpDir removes the per-cell generated files directory. Unless force
// is set, the directory is only removed when it holds a seed archive, so a
// directory that was never populated by this tool is left alone.
func RemoveTmpDir(ctx *Context, force bool) error {
	dir := ctx.Config.TmpDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if !force {
		if _, err := os.Stat(filepath.Join(dir, "seed.tar.gz")); err != nil {
			return fmt.Errorf("refusing to delete directory %s, please check its contents", dir)
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete %s: %w", dir, err)
	}
	return nil
}
