package service

import (
	"context"
	"fmt"

	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/config"
	"github.com/Sadab-Ansari/Contract-SPA-Dashboard/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSource reads the contracts document from an object in a MinIO/S3 bucket
type MinioSource struct {
	client *minio.Client
	bucket string
	object string
	config *config.MinioConfig
}

func NewMinioSource(cfg *config.MinioConfig) (*MinioSource, error) {
	if cfg.Bucket == "" || cfg.Object == "" {
		return nil, fmt.Errorf("minio source requires bucket and object")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &MinioSource{
		client: client,
		bucket: cfg.Bucket,
		object: cfg.Object,
		config: cfg,
	}, nil
}

func (s *MinioSource) Name() string {
	return "minio:" + s.ObjectURL()
}

// Fetch downloads and decodes the document object
func (s *MinioSource) Fetch(ctx context.Context) ([]*model.Contract, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces a missing bucket or object
	if _, err := obj.Stat(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return DecodeContracts(obj)
}

// ObjectURL returns the path-style URL of the document object
func (s *MinioSource) ObjectURL() string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, s.object)
}
