// Package s3 fetches objects from Amazon S3 and S3-compatible stores.
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Scheme is the optional location prefix.
const Scheme = "s3://"

// Options configures the S3 client. Zero values fall back to the default
// AWS credential and region chain.
type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	// Endpoint overrides the service endpoint, e.g. for MinIO.
	Endpoint     string
	UsePathStyle bool
}

// API is the subset of the S3 client used by Fetcher.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher reads whole objects from S3.
type Fetcher struct {
	opts   Options
	client API
	logger *slog.Logger
}

// New creates a Fetcher. The client is built on first use from opts.
// If logger is nil, a discard logger is used.
func New(opts Options, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{opts: opts, logger: logger}
}

// NewWithClient creates a Fetcher around an existing client.
func NewWithClient(client API, logger *slog.Logger) *Fetcher {
	f := New(Options{}, logger)
	f.client = client
	return f
}

// SplitLocation splits "s3://bucket/key" or "bucket/key" into bucket and
// key on the first separator.
func SplitLocation(location string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(location, Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 location %q: expected bucket/key", location)
	}
	return bucket, key, nil
}

// Fetch downloads the object named by location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	bucket, key, err := SplitLocation(location)
	if err != nil {
		return nil, err
	}

	client, err := f.getClient(ctx)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetching object", "bucket", bucket, "key", key)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object s3://%s/%s: %w", bucket, key, err)
	}
	f.logger.Debug("fetched object", "bucket", bucket, "key", key, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) getClient(ctx context.Context) (API, error) {
	if f.client != nil {
		return f.client, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, f.opts.loadOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	f.client = s3.NewFromConfig(cfg, f.opts.apply)
	return f.client, nil
}

func (o Options) loadOptions() []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	if o.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKeyID, o.SecretAccessKey, o.SessionToken)))
	}
	return opts
}

func (o Options) apply(so *s3.Options) {
	if o.Endpoint != "" {
		so.BaseEndpoint = aws.String(o.Endpoint)
	}
	so.UsePathStyle = o.UsePathStyle
}
