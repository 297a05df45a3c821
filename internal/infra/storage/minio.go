package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"storefront/internal/config"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioImageStore は商品画像をMinIOに保存する。
type MinioImageStore struct {
	client *minio.Client
	bucket string
}

func NewMinioImageStore(ctx context.Context, cfg config.Config) (*MinioImageStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio connect: %w", err)
	}

	//バケットがなければ作る
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}

	return &MinioImageStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Save は画像を保存してオブジェクトキーを返す。
// キーはUUIDで作るので同名ファイルでも衝突しない。
func (s *MinioImageStore) Save(ctx context.Context, filename string, contentType string, size int64, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	objectName := fmt.Sprintf("products/%s%s", uuid.NewString(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio put: %w", err)
	}

	return objectName, nil
}

func (s *MinioImageStore) Remove(ctx context.Context, objectName string) error {
	if objectName == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove: %w", err)
	}
	return nil
}
