package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"gridlink/internal/config"
)

var ErrNotConfigured = errors.New("storage: AWS_REGION and AWS_S3_BUCKET are required")

// ObjectStore is the object-storage boundary: upload a buffer, get a
// time-limited retrieval URL back for a key.
type ObjectStore interface {
	Upload(ctx context.Context, data []byte, fileName, fileHash string, metadata map[string]string) (string, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// S3Store uploads artifacts to S3 under {year}/{month}/{hash}.{ext}
// keys and hands out presigned GET URLs.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	now     func() time.Time
}

func NewS3Store(ctx context.Context, cfg config.S3Config) (*S3Store, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	// Without static keys the SDK falls back to the ambient credential
	// chain (IAM role, env, shared config).
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		now:     time.Now,
	}, nil
}

func (st *S3Store) Upload(ctx context.Context, data []byte, fileName, fileHash string, metadata map[string]string) (string, error) {
	key := st.objectKey(fileName, fileHash)

	_, err := st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(st.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata:    metadata,
	})
	if err != nil {
		return "", fmt.Errorf("storage: upload failed: %w", err)
	}

	return key, nil
}

func (st *S3Store) PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	req, err := st.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(st.bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expires
	})
	if err != nil {
		return "", fmt.Errorf("storage: presign failed: %w", err)
	}

	return req.URL, nil
}

// ObjectKey builds the {year}/{month}/{hash}.{ext} layout for a hash
// known in advance, used when resolving previously uploaded files.
func ObjectKey(fileHash string, at time.Time) string {
	return fmt.Sprintf("%d/%02d/%s.json", at.Year(), int(at.Month()), fileHash)
}

func (st *S3Store) objectKey(fileName, fileHash string) string {
	hashForKey := fileHash
	if hashForKey == "" {
		hashForKey = fmt.Sprintf("file-%d", st.now().UnixMilli())
	}

	ext := "json"
	if idx := strings.LastIndex(fileName, "."); idx >= 0 && idx < len(fileName)-1 {
		ext = fileName[idx+1:]
	}

	now := st.now()
	return fmt.Sprintf("%d/%02d/%s.%s", now.Year(), int(now.Month()), hashForKey, ext)
}
