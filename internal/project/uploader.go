package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/aiteam/saas-devgen/codegen-service/internal/config"
)

// Uploader pushes project archives to MinIO/S3 compatible object storage.
// Upload failures are reported to the caller so it can degrade to local
// file URLs instead of failing the generation.
type Uploader struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewUploader builds an Uploader from artifact configuration. Returns an
// error when the endpoint or credentials are missing.
func NewUploader(cfg config.ArtifactConfig) (*Uploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("artifact endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("artifact access key and secret key are required")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init artifact client: %w", err)
	}

	return &Uploader{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	u.initOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.initErr = err
			return
		}
		if exists {
			return
		}
		u.initErr = u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region})
	})
	return u.initErr
}

// UploadArchive stores a project archive under generations/<id>/ and returns
// the object URL.
func (u *Uploader) UploadArchive(ctx context.Context, generationID, archivePath string) (string, error) {
	if err := u.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}

	key := fmt.Sprintf("generations/%s/%s", generationID, filepath.Base(archivePath))
	_, err = u.client.PutObject(ctx, u.bucket, key, f, fi.Size(), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return "", fmt.Errorf("upload archive: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", u.bucket, key), nil
}
