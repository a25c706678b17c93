package aws

import (
	"context"

	"github.com/cellos/cell/internal/backend"
)

// BucketName implements backend.BucketManager.
func (b *Backend) BucketName() string { return b.cfg.Bucket }

// ExternalBucket implements backend.BucketManager.
func (b *Backend) ExternalBucket() bool { return b.cfg.ExternalBucket }

// CreateBucket creates the cell bucket unless it is external, then allows
// public GETs on it. The CORS rule is applied to external buckets too.
func (b *Backend) CreateBucket(ctx context.Context) (bool, error) {
	bucket := b.cfg.Bucket
	created := false
	if !b.cfg.ExternalBucket {
		b.logf("CREATE bucket s3://%s in region %s", bucket, b.cfg.Region)
		if err := b.store.CreateBucket(ctx, bucket); err != nil {
			return false, &backend.BucketError{Bucket: bucket, Op: "create", Err: err}
		}
		created = true
	} else {
		b.logf("Using existing bucket s3://%s", bucket)
	}

	if err := b.store.AllowPublicGet(ctx, bucket); err != nil {
		return created, &backend.BucketError{Bucket: bucket, Op: "configure", Err: err}
	}
	return created, nil
}

// DeleteBucket empties and removes an owned bucket. Of an external bucket
// only the objects below the cell prefix are removed.
func (b *Backend) DeleteBucket(ctx context.Context) error {
	bucket := b.cfg.Bucket
	prefix := ""
	if b.cfg.ExternalBucket {
		prefix = b.cfg.Cell.FullName() + "/"
		b.logf("DELETE s3://%s/%s", bucket, prefix)
	} else {
		b.logf("DELETE s3://%s", bucket)
	}

	deleted, err := b.store.DeletePrefix(ctx, bucket, prefix)
	for _, key := range deleted {
		b.logf("DELETE s3://%s/%s", bucket, key)
	}
	if err != nil {
		return &backend.BucketError{Bucket: bucket, Op: "empty", Err: err}
	}

	if b.cfg.ExternalBucket {
		return nil
	}
	if err := b.store.DeleteBucket(ctx, bucket); err != nil {
		return &backend.BucketError{Bucket: bucket, Op: "delete", Err: err}
	}
	return nil
}
