// pkg/report/archive.go
package report

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/config"
	"github.com/tablerecon/tablerecon/pkg/model"
)

// ObjectUploader is the slice of the object storage client the archiver
// uses. minio.Client satisfies it.
type ObjectUploader interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archiver uploads a run's output tree to an S3-compatible bucket
type Archiver struct {
	logger *zap.Logger
	client ObjectUploader
	bucket string
	prefix string
}

// NewArchiveClient creates a minio client from the archive configuration.
func NewArchiveClient(cfg *config.ArchiveConfig) (*minio.Client, error) {
	// Minio expects endpoint without scheme
	endpoint := strings.TrimPrefix(cfg.Endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return client, nil
}

// NewArchiver creates an archiver targeting one bucket
func NewArchiver(logger *zap.Logger, client ObjectUploader, bucket, prefix string) *Archiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		logger: logger.Named("archiver"),
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// ArchiveRun uploads every file under the run's output directory. Object
// names are prefixed with the run date and run id so consecutive runs never
// overwrite each other. Returns the number of objects uploaded.
func (a *Archiver) ArchiveRun(ctx context.Context, run *model.RunContext) (int, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return 0, fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("archive bucket %s does not exist", a.bucket)
	}

	keyBase := path.Join(a.prefix, run.StartedAt.Format("20060102"), run.RunID)

	uploaded := 0
	err = filepath.WalkDir(run.OutputDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(run.OutputDir, p)
		if err != nil {
			return fmt.Errorf("failed to resolve output path %s: %w", p, err)
		}

		objectName := path.Join(keyBase, filepath.ToSlash(rel))
		opts := minio.PutObjectOptions{ContentType: contentTypeFor(p)}

		if _, err := a.client.FPutObject(ctx, a.bucket, objectName, p, opts); err != nil {
			return fmt.Errorf("failed to upload %s: %w", objectName, err)
		}

		a.logger.Debug("Uploaded output file",
			zap.String("object", objectName),
			zap.String("bucket", a.bucket))
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	a.logger.Info("Archived run output",
		zap.String("bucket", a.bucket),
		zap.String("key_base", keyBase),
		zap.Int("objects", uploaded))

	return uploaded, nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
