package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/projecteru2/dsfetch/types"
)

// S3Source reads s3://bucket/key locators from public buckets with
// anonymous credentials.
type S3Source struct {
	client *s3.Client
}

// NewS3Source creates an S3Source for region. A non-empty endpoint points
// the client at an S3-compatible server using path-style addressing.
func NewS3Source(region, endpoint string) *S3Source {
	opts := s3.Options{
		Region:      region,
		Credentials: aws.AnonymousCredentials{},
		// Checksums are verified against the manifest MD5 instead.
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return &S3Source{client: s3.New(opts)}
}

func (s *S3Source) Schemes() []string { return []string{"s3"} }

// Open starts a streaming GetObject. Failures wrap types.ErrNetwork.
func (s *S3Source) Open(ctx context.Context, locator string) (io.ReadCloser, int64, error) {
	bucket, key, err := ParseS3Locator(locator)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: S3 GetObject %s: %w", types.ErrNetwork, locator, err)
	}
	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return out.Body, size, nil
}

// ParseS3Locator splits s3://bucket/key.
func ParseS3Locator(locator string) (bucket, key string, err error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", "", fmt.Errorf("parse S3 locator %q: %w", locator, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid S3 locator %q: want s3://bucket/key", locator)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("invalid S3 locator %q: missing key", locator)
	}
	return u.Host, key, nil
}
