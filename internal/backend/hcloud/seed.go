package hcloud

import (
	"context"
	"fmt"
)

const (
	versionBundleAsset = "cell-os-base.yaml"
	statusPageAsset    = "deploy/aws/resources/status.html"
	userDataAsset      = "deploy/machine/user-data"
)

// Build produces the seed tarball locally. Servers need no templates.
func (b *Backend) Build(ctx context.Context) error {
	if _, err := b.seeds.Build(ctx); err != nil {
		return fmt.Errorf("failed to build seed: %w", err)
	}
	return nil
}

// Seed builds the seed and uploads the boot artifacts below the cell prefix.
func (b *Backend) Seed(ctx context.Context) error {
	archive, err := b.seeds.Build(ctx)
	if err != nil {
		return fmt.Errorf("failed to build seed: %w", err)
	}

	c := b.cfg.Cell
	uploads := []struct {
		path, key, contentType string
	}{
		{archive, c.SeedKey(), ""},
		{b.cfg.Asset(versionBundleAsset), c.VersionBundleKey(b.cfg.Version), ""},
		{b.cfg.Asset(statusPageAsset), c.StatusPageKey(), "text/html"},
		{b.cfg.Asset(userDataAsset), c.UserDataKey(), ""},
	}
	for _, u := range uploads {
		if err := b.store.UploadFile(ctx, b.cfg.Bucket, u.key, u.path, u.contentType); err != nil {
			return fmt.Errorf("failed to upload %s: %w", u.path, err)
		}
		b.logf("UPLOADED %s to s3://%s/%s", u.path, b.cfg.Bucket, u.key)
	}
	return nil
}
