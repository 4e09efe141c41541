package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

const (
	uploadURLExpiry = 15 * time.Minute
	readURLExpiry   = 30 * time.Minute
)

// Client wraps a MinIO bucket used for post images. Posts store only the
// object key; fetchable URLs are minted per read so they never go stale.
type Client struct {
	minio  *minio.Client
	bucket string
}

// New connects to MinIO and ensures the image bucket exists
func New(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*Client, error) {
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := mc.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket error: %w", err)
		}
	}

	logrus.Infof("Blob storage ready (bucket %q)", bucket)
	return &Client{minio: mc, bucket: bucket}, nil
}

// GenerateUploadURL mints a fresh object key and a presigned PUT URL for it.
// The client uploads directly to storage and then passes the key back when
// creating the post.
func (c *Client) GenerateUploadURL(ctx context.Context) (key, url string, err error) {
	key = "images/" + uuid.New().String()
	u, err := c.minio.PresignedPutObject(ctx, c.bucket, key, uploadURLExpiry)
	if err != nil {
		return "", "", fmt.Errorf("presign upload error: %w", err)
	}
	return key, u.String(), nil
}

// ResolveURL turns a stored object key into a fetchable URL. An empty key
// resolves to an empty URL.
func (c *Client) ResolveURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	u, err := c.minio.PresignedGetObject(ctx, c.bucket, key, readURLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign read error: %w", err)
	}
	return u.String(), nil
}
