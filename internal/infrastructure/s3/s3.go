package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"cloudy/config"
	"cloudy/internal/application/ports"
	"cloudy/internal/domain/apperr"
)

// api is the subset of *s3.Client the store calls.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Client struct {
	logger    *zap.Logger
	api       api
	bucket    string
	publicURL string
}

func New(
	ctx context.Context,
	logger *zap.Logger,
	cfg config.S3,
) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newClient(logger, client, cfg), nil
}

func newClient(logger *zap.Logger, api api, cfg config.S3) *Client {
	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
	}
	return &Client{
		logger:    logger,
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// Put stores r under a fresh key. The key doubles as the object id.
func (c *Client) Put(ctx context.Context, name string, size int64, r io.Reader) (*ports.Object, error) {
	key := genSafeStorageKey(name)
	mimeType := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(c.bucket),
		Key:                  aws.String(key),
		Body:                 r,
		ContentLength:        aws.Int64(size),
		ContentType:          aws.String(mimeType),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put object bucket=%s key=%s: %v: %w", c.bucket, key, err, apperr.ErrStoreUnavailable)
	}

	c.logger.Debug("object stored", zap.String("key", key), zap.Int64("size", size))

	return &ports.Object{ID: key, Name: name, Size: size, MimeType: mimeType}, nil
}

func (c *Client) Get(ctx context.Context, objectID string) (io.ReadCloser, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectID),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3 object %s: %w", objectID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %v: %w", c.bucket, objectID, err, apperr.ErrStoreUnavailable)
	}
	return out.Body, nil
}

func (c *Client) Delete(ctx context.Context, objectID string) error {
	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(objectID),
	}); err != nil {
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %v: %w", c.bucket, objectID, err, apperr.ErrStoreUnavailable)
	}
	return nil
}

func (c *Client) URL(objectID string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, objectID)
}
