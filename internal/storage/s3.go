// Package storage puts uploaded files into an S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client used by Bucket.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// NewS3Client loads the AWS config. Static credentials win over the
// default chain when both keys are set; Endpoint points at MinIO or
// LocalStack and switches to path-style addressing.
func NewS3Client(ctx context.Context, opts Options) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if strings.TrimSpace(opts.AccessKeyID) != "" && strings.TrimSpace(opts.SecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type Bucket struct {
	client    S3API
	bucket    string
	publicURL string
}

func NewBucket(client S3API, bucket, publicURL string) *Bucket {
	return &Bucket{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

var ErrNoBucket = errors.New("storage: bucket not configured")

// Put stores body under a fresh key that keeps the original extension
// and returns the key.
func (b *Bucket) Put(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if b == nil || b.client == nil || b.bucket == "" {
		return "", ErrNoBucket
	}
	key := uuid.NewString() + strings.ToLower(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: s3 put %s: %w", key, err)
	}
	return key, nil
}

// URL is the public address of a stored key.
func (b *Bucket) URL(key string) string {
	if key == "" {
		return ""
	}
	if b == nil {
		return key
	}
	return b.publicURL + "/" + key
}
