package artifacts

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"storyreel/internal/config"
	"storyreel/internal/services"
)

// Publisher uploads final project artifacts and returns shareable URLs.
type Publisher interface {
	PublishFinalVideo(ctx context.Context, projectID, localPath string) (string, error)
	Enabled() bool
}

// NewPublisher builds an object-storage publisher from configuration. When
// artifact publishing is disabled it returns a no-op implementation.
func NewPublisher(cfg *config.Config) (Publisher, error) {
	if !cfg.Artifacts.Enabled {
		return noopPublisher{}, nil
	}
	endpoint := strings.TrimSpace(cfg.Artifacts.Endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "artifacts", "init", "endpoint required when publishing is enabled", nil)
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Artifacts.AccessKey, cfg.Artifacts.SecretKey, ""),
		Secure: cfg.Artifacts.UseSSL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "artifacts", "init", "connect object storage", err)
	}
	expiry := time.Duration(cfg.Artifacts.URLExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &minioPublisher{
		client: client,
		bucket: cfg.Artifacts.Bucket,
		expiry: expiry,
	}, nil
}

type minioPublisher struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

func (p *minioPublisher) Enabled() bool { return true }

// PublishFinalVideo uploads the final video under projects/<id>/ and returns
// a presigned URL valid for the configured expiry.
func (p *minioPublisher) PublishFinalVideo(ctx context.Context, projectID, localPath string) (string, error) {
	const operation = "publish final video"
	if err := p.ensureBucket(ctx); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("projects/%s/%s", projectID, filepath.Base(localPath))
	_, err := p.client.FPutObject(ctx, p.bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentTypeFor(localPath),
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "artifacts", operation, "upload object", err)
	}

	presigned, err := p.client.PresignedGetObject(ctx, p.bucket, objectName, p.expiry, url.Values{})
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "artifacts", operation, "presign url", err)
	}
	return presigned.String(), nil
}

func (p *minioPublisher) ensureBucket(ctx context.Context) error {
	exists, err := p.client.BucketExists(ctx, p.bucket)
	if err != nil {
		return services.Wrap(services.ErrTransient, "artifacts", "ensure bucket", "check bucket", err)
	}
	if exists {
		return nil
	}
	if err := p.client.MakeBucket(ctx, p.bucket, minio.MakeBucketOptions{}); err != nil {
		return services.Wrap(services.ErrTransient, "artifacts", "ensure bucket", "create bucket", err)
	}
	return nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4":
		return "video/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

type noopPublisher struct{}

func (noopPublisher) Enabled() bool { return false }

func (noopPublisher) PublishFinalVideo(context.Context, string, string) (string, error) {
	return "", nil
}
