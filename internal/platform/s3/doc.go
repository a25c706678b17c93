// Package s3 provides the object storage client holding cell seed
// artifacts and stack templates. It talks to AWS S3 or to any
// S3-compatible endpoint such as Hetzner Object Storage.
package s3
