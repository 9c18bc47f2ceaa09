// Package r2client publishes conversion artifacts to Cloudflare R2 object
// storage through the S3 API.
package r2client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// Config holds R2 client configuration.
type Config struct {
	Endpoint    string // https://<account>.r2.cloudflarestorage.com or a compatible endpoint
	AccessKeyID string
	SecretKey   string
	BucketName  string
}

func (c Config) validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"endpoint", c.Endpoint},
		{"access key id", c.AccessKeyID},
		{"secret key", c.SecretKey},
		{"bucket", c.BucketName},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("r2client: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Object is one artifact to store.
type Object struct {
	Key          string
	Body         []byte
	ContentType  string
	CacheControl string
	Metadata     map[string]string // sent as x-amz-meta-* headers
}

// Error describes a failed object operation. Code and Status are set when
// the service answered.
type Error struct {
	Op     string
	Key    string
	Code   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("r2client: %s %q: %s (HTTP %d)", e.Op, e.Key, e.Code, e.Status)
	}
	return fmt.Sprintf("r2client: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(op, key string, err error) *Error {
	e := &Error{Op: op, Key: key, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		e.Status = respErr.HTTPStatusCode()
	}
	return e
}

// Client stores objects in one bucket.
type Client struct {
	s3     *s3.Client
	bucket string
}

// New creates a client with static credentials. R2 needs region "auto" and
// path-style addressing.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2client: load aws config: %w", err)
	}

	return &Client{
		s3: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}),
		bucket: cfg.BucketName,
	}, nil
}

// Put stores obj, replacing any existing object, and returns its ETag.
func (c *Client) Put(ctx context.Context, obj Object) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(obj.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		Metadata:      obj.Metadata,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if obj.CacheControl != "" {
		input.CacheControl = aws.String(obj.CacheControl)
	}

	out, err := c.s3.PutObject(ctx, input)
	if err != nil {
		return "", newError("put", obj.Key, err)
	}
	return strings.Trim(aws.ToString(out.ETag), `"`), nil
}

// Delete removes an object. Removing a missing key succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newError("delete", key, err)
	}
	return nil
}
