// Package storage hands out presigned URLs so clients upload and download
// task attachments directly against S3.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"sitecrew/config"
)

type Presigner interface {
	ObjectKey(taskID, fileName string) string
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type S3Presigner struct {
	client *s3.PresignClient
	bucket string
	prefix string
	ttl    time.Duration
}

// NewS3Presigner loads the default AWS credential chain.
func NewS3Presigner(ctx context.Context, env config.S3Env) (*S3Presigner, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(env.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewS3PresignerFromClient(s3.NewFromConfig(cfg), env), nil
}

func NewS3PresignerFromClient(client *s3.Client, env config.S3Env) *S3Presigner {
	prefix := strings.Trim(env.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Presigner{
		client: s3.NewPresignClient(client),
		bucket: env.Bucket,
		prefix: prefix,
		ttl:    env.PresignTTL,
	}
}

// ObjectKey places uploads under prefix/taskID/ with a random component so
// repeated file names never collide.
func (s *S3Presigner) ObjectKey(taskID, fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	return s.prefix + taskID + "/" + uuid.NewString() + "-" + name
}

func (s *S3Presigner) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.client.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload of s3://%s/%s: %w", s.bucket, key, err)
	}
	return req.URL, nil
}

func (s *S3Presigner) PresignDownload(ctx context.Context, key string) (string, error) {
	req, err := s.client.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign download of s3://%s/%s: %w", s.bucket, key, err)
	}
	return req.URL, nil
}
