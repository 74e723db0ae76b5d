// AngelaMos | 2026
// storage.go

package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"

	"github.com/casannunci/backend/internal/config"
)

// Uploader is the blob-store boundary: bytes in, public URL out. The URL is
// stored verbatim on the listing record.
type Uploader interface {
	Upload(
		ctx context.Context,
		key, contentType string,
		r io.Reader,
	) (string, error)
}

type Client struct {
	bucket        *oss.Bucket
	publicBaseURL string
}

func NewClient(cfg config.StorageConfig) (*Client, error) {
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("create oss client: %w", err)
	}

	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", cfg.Bucket, err)
	}

	publicBase := cfg.PublicBaseURL
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.%s", cfg.Bucket, cfg.Endpoint)
	}

	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (c *Client) Upload(
	ctx context.Context,
	key, contentType string,
	r io.Reader,
) (string, error) {
	opts := []oss.Option{
		oss.ContentType(contentType),
		oss.WithContext(ctx),
	}

	if err := c.bucket.PutObject(key, r, opts...); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return c.publicBaseURL + "/" + key, nil
}

// ObjectKey builds a collision-free key preserving the original extension.
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
}
