package aws

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Asset paths relative to the assets directory.
const (
	versionBundleAsset = "cell-os-base.yaml"
	statusPageAsset    = "deploy/aws/resources/status.html"
	userDataAsset      = "deploy/machine/user-data"
	templateBuildDir   = "deploy/aws/build"
)

// Stack templates uploaded next to the seed.
const (
	mainTemplate    = "elastic-cell.json"
	scalingTemplate = "elastic-cell-scaling-group.json"
)

type upload struct {
	path        string
	key         string
	contentType string
}

// Build produces the seed tarball and the stack templates locally.
func (b *Backend) Build(ctx context.Context) error {
	if _, err := b.seeds.Build(ctx); err != nil {
		return fmt.Errorf("failed to build seed: %w", err)
	}
	return b.buildStackFiles()
}

// Seed builds the seed and uploads it together with the version bundle,
// the status page and the node user-data below the cell prefix.
func (b *Backend) Seed(ctx context.Context) error {
	archive, err := b.seeds.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build seed: %w", err)
	}

	c := b.cfg.Cell
	return b.uploadAll(ctx, []upload{
		{path: archive, key: c.SeedKey()},
		{path: b.cfg.Asset(versionBundleAsset), key: c.VersionBundleKey(b.cfg.Version)},
		{path: b.cfg.Asset(statusPageAsset), key: c.StatusPageKey(), contentType: "text/html"},
		{path: b.cfg.Asset(userDataAsset), key: c.UserDataKey()},
	})
}

func (b *Backend) uploadAll(ctx context.Context, uploads []upload) error {
	for _, u := range uploads {
		if err := b.store.UploadFile(ctx, b.cfg.Bucket, u.key, u.path, u.contentType); err != nil {
			return fmt.Errorf("failed to upload %s: %w", u.path, err)
		}
		b.logf("UPLOADED %s to s3://%s/%s", u.path, b.cfg.Bucket, u.key)
	}
	return nil
}

// buildStackFiles places the stack templates in the cell tmp dir. The
// templates are generated ahead of time into the assets build directory.
func (b *Backend) buildStackFiles() error {
	b.logf("Building stack ...")
	for _, name := range []string{mainTemplate, scalingTemplate} {
		src := b.cfg.Asset(filepath.Join(templateBuildDir, name))
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read stack template: %w", err)
		}
		if err := os.MkdirAll(b.cfg.TmpDir(), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", b.cfg.TmpDir(), err)
		}
		if err := os.WriteFile(b.cfg.Tmp(name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write stack template: %w", err)
		}
	}
	return nil
}
