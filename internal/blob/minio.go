package blob

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds connection settings for an S3-compatible object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// BaseURL overrides the endpoint URL recorded on file rows when the
	// store is fronted by a CDN or a different public host.
	BaseURL string
}

// MinioStore implements Store against an S3-compatible object store.
type MinioStore struct {
	client  *minio.Client
	baseURL string
	logger  *slog.Logger
}

func NewMinioStore(cfg MinioConfig, logger *slog.Logger) (*MinioStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	logger.Info("object store client ready", "endpoint", cfg.Endpoint, "base_url", baseURL)
	return &MinioStore{client: client, baseURL: baseURL, logger: logger}, nil
}

func (s *MinioStore) Put(ctx context.Context, container, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, container, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		s.logger.Error("object store put failed", "container", container, "name", name, "error", err)
		return fmt.Errorf("put %s/%s: %w", container, name, err)
	}
	return nil
}

func (s *MinioStore) BaseURL() string {
	return s.baseURL
}
