// Package s3blob is an S3-backed alternate implementation of the
// blob.Backend content-addressing contract: same ref scheme, same
// write/read/has semantics, different durability substrate. Objects are
// keyed by the same <2-hex>/<64-hex> layout as the filesystem store, so
// a bundle built from either backend looks identical to a consumer.
package s3blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/justapithecus/vifei/blob"
)

// Config configures an S3-backed blob store.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string
	// Prefix is the key prefix within the bucket (optional).
	Prefix string
	// Region is the AWS region (optional, uses the default chain if empty).
	Region string
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. a self-hosted object store). Empty uses the default AWS endpoint.
	Endpoint string
	// UsePathStyle forces path-style addressing, required by most
	// non-AWS S3-compatible providers.
	UsePathStyle bool
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3blob: bucket is required")
	}
	return nil
}

// Store is an S3-backed blob.Backend.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ blob.Backend = (*Store)(nil)

// Open builds a Store using the AWS SDK's default credential chain (env
// vars, shared config, IAM role).
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Store{
		client: s3.NewFromConfig(awsCfg, clientOpts...),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Write stores data under its BLAKE3-derived ref. PutObject is itself
// idempotent on identical bytes, so no existence check is needed before
// writing — unlike the filesystem backend, a redundant PUT of identical
// content-addressed bytes is harmless and cheap enough not to special-case.
func (s *Store) Write(data []byte) (string, error) {
	ref := blob.ComputeRef(data)
	ctx := context.Background()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("s3blob: put %s: %w", ref, err)
	}
	return ref, nil
}

// Read returns the bytes stored under ref, or (nil, false, nil) if no
// object exists for it. ref is validated before any key is constructed.
func (s *Store) Read(ref string) ([]byte, bool, error) {
	if !blob.ValidRef(ref) {
		return nil, false, fmt.Errorf("%w: %q", blob.ErrInvalidRef, ref)
	}
	ctx := context.Background()
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3blob: get %s: %w", ref, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3blob: read body %s: %w", ref, err)
	}
	return data, true, nil
}

// Has reports whether an object exists for ref, validating ref first.
func (s *Store) Has(ref string) bool {
	if !blob.ValidRef(ref) {
		return false
	}
	ctx := context.Background()
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(ref)),
	})
	return err == nil
}

func (s *Store) objectKey(ref string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s/%s", ref[:2], ref)
	}
	return fmt.Sprintf("%s/%s/%s", s.prefix, ref[:2], ref)
}

// isNotFound reports whether err represents a missing-object response.
func isNotFound(err error) bool {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode() == 404
	}
	return false
}
