// Package storage abstracts where run artifacts and the ledger are kept.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Target is a parsed storage location.
type Target struct {
	// Bucket is set for s3:// targets only.
	Bucket string
	// Prefix is the key prefix (s3) or root directory (local).
	Prefix string
}

// IsS3 reports whether the target points at S3.
func (t Target) IsS3() bool { return t.Bucket != "" }

// Key joins name onto the target prefix with forward slashes.
func (t Target) Key(name string) string {
	if t.Prefix == "" {
		return name
	}
	return strings.TrimSuffix(t.Prefix, "/") + "/" + name
}

// ParseTarget accepts "s3://bucket/prefix" or a local path.
func ParseTarget(raw string) (Target, error) {
	if !strings.HasPrefix(raw, "s3://") {
		return Target{Prefix: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, err
	}
	if u.Host == "" {
		return Target{}, errors.New("storage: s3 target is missing a bucket")
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Open returns the store for a target. Local targets are rooted at the
// target path and use an empty key prefix.
func Open(ctx context.Context, t Target) (BlobStore, error) {
	if t.IsS3() {
		return NewS3StoreFromEnv(ctx, t.Bucket)
	}
	return NewLocalStore(t.Prefix), nil
}
