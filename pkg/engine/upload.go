package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DrSkyle/knapsack-ga/pkg/storage"
)

// UploadArtifacts copies the given files to the s3 output target, keyed by
// base name under the target prefix. Empty paths are skipped and a failed
// file does not stop the others.
func (e *Engine) UploadArtifacts(ctx context.Context, paths ...string) error {
	if e.s3Target == nil {
		return nil
	}

	_, span := e.Tracer.Start(ctx, "Engine.UploadArtifacts")
	defer span.End()

	store := e.artifacts
	if store == nil {
		var err error
		store, err = storage.Open(ctx, *e.s3Target)
		if err != nil {
			return fmt.Errorf("failed to open artifact store: %w", err)
		}
		e.artifacts = store
	}

	e.Logger.Info("Uploading artifacts to S3", "bucket", e.s3Target.Bucket, "prefix", e.s3Target.Prefix)

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			e.Logger.Warn("Failed to read artifact", "file", path, "error", err)
			continue
		}
		key := e.s3Target.Key(filepath.Base(path))
		if err := store.Put(ctx, key, data); err != nil {
			e.Logger.Warn("Failed to upload artifact", "file", path, "error", err)
			continue
		}
		e.Logger.Debug("Uploaded artifact", "key", key)
	}
	return nil
}
