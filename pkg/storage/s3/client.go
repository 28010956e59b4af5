package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/angelmondragon/wanderlust-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/wanderlust-backend/pkg/errors"
	"github.com/angelmondragon/wanderlust-backend/pkg/logger"
	"github.com/angelmondragon/wanderlust-backend/pkg/types"
)

const keyPrefix = "listings"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
	"image/avif": true,
}

// ErrUnsupportedImage is returned when the upload is not a recognised image.
var ErrUnsupportedImage = errors.New("unsupported image type")

type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
}

// minioAPI adapts *minio.Client to objectAPI.
type minioAPI struct {
	client *minio.Client
}

func (m minioAPI) PutObject(ctx context.Context, bucket, key string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return m.client.PutObject(ctx, bucket, key, reader, size, opts)
}

func (m minioAPI) RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error {
	return m.client.RemoveObject(ctx, bucket, key, opts)
}

func (m minioAPI) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return m.client.BucketExists(ctx, bucket)
}

// Upload is an image received from a listing form.
type Upload struct {
	OriginalName string
	Data         []byte
}

// Client stores listing images in an S3 compatible bucket.
type Client struct {
	api     objectAPI
	bucket  string
	baseURL string
	logg    *logger.Logger
}

// NewClient connects to the configured endpoint and makes sure the bucket exists.
func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", cfg.Endpoint, err)
	}

	if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		exists, existsErr := mc.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("make/verify bucket %s: make: %v, exists: %v", cfg.Bucket, err, existsErr)
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		baseURL = mc.EndpointURL().String() + "/" + url.PathEscape(cfg.Bucket)
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"endpoint": cfg.Endpoint, "bucket": cfg.Bucket}), "image storage ready")
	}

	return &Client{api: minioAPI{client: mc}, bucket: cfg.Bucket, baseURL: baseURL, logg: logg}, nil
}

// Upload validates the image content and stores it under a fresh key. The
// returned Image.Filename is the object key used by Delete.
func (c *Client) Upload(ctx context.Context, upload Upload) (types.Image, error) {
	if len(upload.Data) == 0 {
		return types.Image{}, pkgerrors.New(pkgerrors.CodeValidation, "image is empty")
	}
	contentType, ext, err := SniffImage(upload.Data)
	if err != nil {
		return types.Image{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image must be a jpeg, png, webp, gif or avif file")
	}

	key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.NewString(), ext)
	opts := minio.PutObjectOptions{ContentType: contentType}
	if name := strings.TrimSpace(upload.OriginalName); name != "" {
		opts.UserMetadata = map[string]string{"original-filename": name}
	}

	if _, err := c.api.PutObject(ctx, c.bucket, key, bytes.NewReader(upload.Data), int64(len(upload.Data)), opts); err != nil {
		return types.Image{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	return types.Image{URL: c.baseURL + "/" + key, Filename: key}, nil
}

// Delete removes a stored object. Missing objects are not an error.
func (c *Client) Delete(ctx context.Context, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return nil
	}
	if err := c.api.RemoveObject(ctx, c.bucket, filename, minio.RemoveObjectOptions{}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	return nil
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", c.bucket)
	}
	return nil
}

// SniffImage detects the content type from the bytes themselves, ignoring the
// client supplied name and header.
func SniffImage(data []byte) (contentType, ext string, err error) {
	mt := mimetype.Detect(data)
	if !allowedImageTypes[mt.String()] {
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}
	return mt.String(), mt.Extension(), nil
}
