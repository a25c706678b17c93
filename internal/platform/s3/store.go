package s3

import (
	"context"
	"strings"
)

// Store is the subset of Client used by the backends.
type Store interface {
	Region() string
	CreateBucket(ctx context.Context, bucketName string) error
	AllowPublicGet(ctx context.Context, bucketName string) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error)
	PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error
	UploadFile(ctx context.Context, bucketName, key, path, contentType string) error
	GetObject(ctx context.Context, bucketName, key string) ([]byte, error)
	DeletePrefix(ctx context.Context, bucketName, prefix string) ([]string, error)
	DeleteBucket(ctx context.Context, bucketName string) error
}

var _ Store = (*Client)(nil)

// Upload is one object written through MockStore.
type Upload struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
}

// MockStore is an in-memory Store. Unset funcs succeed.
type MockStore struct {
	RegionValue string
	Uploads     []Upload
	Calls       []string

	CreateBucketFunc   func(ctx context.Context, bucketName string) error
	AllowPublicGetFunc func(ctx context.Context, bucketName string) error
	BucketExistsFunc   func(ctx context.Context, bucketName string) (bool, error)
	ListObjectsFunc    func(ctx context.Context, bucketName, prefix string) ([]string, error)
	PutObjectFunc      func(ctx context.Context, bucketName, key string, data []byte, contentType string) error
	GetObjectFunc      func(ctx context.Context, bucketName, key string) ([]byte, error)
	DeletePrefixFunc   func(ctx context.Context, bucketName, prefix string) ([]string, error)
	DeleteBucketFunc   func(ctx context.Context, bucketName string) error
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) record(call string) { m.Calls = append(m.Calls, call) }

// Region returns RegionValue.
func (m *MockStore) Region() string { return m.RegionValue }

// CreateBucket records the call.
func (m *MockStore) CreateBucket(ctx context.Context, bucketName string) error {
	m.record("CreateBucket " + bucketName)
	if m.CreateBucketFunc != nil {
		return m.CreateBucketFunc(ctx, bucketName)
	}
	return nil
}

// AllowPublicGet records the call.
func (m *MockStore) AllowPublicGet(ctx context.Context, bucketName string) error {
	m.record("AllowPublicGet " + bucketName)
	if m.AllowPublicGetFunc != nil {
		return m.AllowPublicGetFunc(ctx, bucketName)
	}
	return nil
}

// BucketExists defaults to true.
func (m *MockStore) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	m.record("BucketExists " + bucketName)
	if m.BucketExistsFunc != nil {
		return m.BucketExistsFunc(ctx, bucketName)
	}
	return true, nil
}

// ListObjects lists the keys uploaded so far below prefix.
func (m *MockStore) ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error) {
	m.record("ListObjects " + bucketName + "/" + prefix)
	if m.ListObjectsFunc != nil {
		return m.ListObjectsFunc(ctx, bucketName, prefix)
	}
	var keys []string
	for _, u := range m.Uploads {
		if u.Bucket == bucketName && strings.HasPrefix(u.Key, prefix) {
			keys = append(keys, u.Key)
		}
	}
	return keys, nil
}

// PutObject stores the upload in Uploads.
func (m *MockStore) PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	m.record("PutObject " + bucketName + "/" + key)
	if m.PutObjectFunc != nil {
		if err := m.PutObjectFunc(ctx, bucketName, key, data, contentType); err != nil {
			return err
		}
	}
	m.Uploads = append(m.Uploads, Upload{Bucket: bucketName, Key: key, Data: data, ContentType: contentType})
	return nil
}

// UploadFile reads path and stores it like PutObject.
func (m *MockStore) UploadFile(ctx context.Context, bucketName, key, path, contentType string) error {
	data, err := readFile(path)
	if err != nil {
		return err
	}
	return m.PutObject(ctx, bucketName, key, data, contentType)
}

// GetObject returns the last upload of key.
func (m *MockStore) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	m.record("GetObject " + bucketName + "/" + key)
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, bucketName, key)
	}
	for i := len(m.Uploads) - 1; i >= 0; i-- {
		if m.Uploads[i].Bucket == bucketName && m.Uploads[i].Key == key {
			return m.Uploads[i].Data, nil
		}
	}
	return nil, nil
}

// DeletePrefix records the call.
func (m *MockStore) DeletePrefix(ctx context.Context, bucketName, prefix string) ([]string, error) {
	m.record("DeletePrefix " + bucketName + "/" + prefix)
	if m.DeletePrefixFunc != nil {
		return m.DeletePrefixFunc(ctx, bucketName, prefix)
	}
	return nil, nil
}

// DeleteBucket records the call.
func (m *MockStore) DeleteBucket(ctx context.Context, bucketName string) error {
	m.record("DeleteBucket " + bucketName)
	if m.DeleteBucketFunc != nil {
		return m.DeleteBucketFunc(ctx, bucketName)
	}
	return nil
}
