package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// ErrObjectNotFound is returned when the requested key or bucket does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Client wraps the S3 client.
type Client struct {
	s3      *s3.Client
	presign *s3.PresignClient
	region  string
}

// NewClient creates a new S3 client using the default credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewFromConfig(cfg), nil
}

// NewFromConfig creates a new S3 client from an already loaded AWS config.
func NewFromConfig(cfg aws.Config, optFns ...func(*s3.Options)) *Client {
	return newClient(s3.NewFromConfig(cfg, optFns...), cfg.Region)
}

func newClient(client *s3.Client, region string) *Client {
	return &Client{
		s3:      client,
		presign: s3.NewPresignClient(client),
		region:  region,
	}
}

// GetObject downloads an object from a bucket.
func (c *Client) GetObject(ctx context.Context, bucketName, key string) ([]byte, error) {
	result, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", bucketName, key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucketName, err)
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return buf.Bytes(), nil
}

// PutObject uploads an object to a bucket.
func (c *Client) PutObject(ctx context.Context, bucketName, key string, data []byte) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucketName, err)
	}
	return nil
}

// DeleteObject deletes an object from a bucket.
// Deleting a missing key is not an error.
func (c *Client) DeleteObject(ctx context.Context, bucketName, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFoundError(err) {
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, bucketName, err)
	}
	return nil
}

// PresignGetObject returns a time-limited download URL for an object.
func (c *Client) PresignGetObject(ctx context.Context, bucketName, key string, expires time.Duration) (string, error) {
	req, err := c.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s in bucket %s: %w", key, bucketName, err)
	}
	return req.URL, nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	// Check for typed S3 errors first
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound", "404":
			return true
		}
	}

	return false
}
