// Package azure fetches blobs from Azure Blob Storage.
package azure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/leapstack-labs/structload/pkg/core"
)

// Schemes accepted as location prefixes.
var schemes = []string{"azure://", "az://"}

// Options configures the blob client.
type Options struct {
	ConnectionString string
	// Container holds the blob. When empty, the first path segment of the
	// location names the container.
	Container string
}

// API is the subset of the azblob client used by Fetcher.
type API interface {
	DownloadStream(ctx context.Context, containerName, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// Fetcher reads whole blobs.
type Fetcher struct {
	opts   Options
	client API
	logger *slog.Logger
}

// New creates a Fetcher. The client is built on first use from the
// connection string. If logger is nil, a discard logger is used.
func New(opts Options, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fetcher{opts: opts, logger: logger}
}

// NewWithClient creates a Fetcher around an existing client.
func NewWithClient(client API, opts Options, logger *slog.Logger) *Fetcher {
	f := New(opts, logger)
	f.client = client
	return f
}

// ResolveBlob returns the container and blob name for location.
func ResolveBlob(location, container string) (string, string, error) {
	rest := location
	for _, s := range schemes {
		rest = strings.TrimPrefix(rest, s)
	}
	rest = strings.TrimPrefix(rest, "/")

	if container == "" {
		var ok bool
		container, rest, ok = strings.Cut(rest, "/")
		if !ok || container == "" {
			return "", "", fmt.Errorf("%w: container (not set and not part of location %q)", core.ErrMissingOption, location)
		}
	}
	if rest == "" {
		return "", "", fmt.Errorf("invalid Azure location %q: missing blob name", location)
	}
	return container, rest, nil
}

// Fetch downloads the blob named by location.
func (f *Fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	container, blob, err := ResolveBlob(location, f.opts.Container)
	if err != nil {
		return nil, err
	}

	client, err := f.getClient()
	if err != nil {
		return nil, err
	}

	f.logger.Debug("fetching blob", "container", container, "blob", blob)
	resp, err := client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to download blob %s/%s: %w", container, blob, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s/%s: %w", container, blob, err)
	}
	f.logger.Debug("fetched blob", "container", container, "blob", blob, "bytes", len(data))
	return data, nil
}

func (f *Fetcher) getClient() (API, error) {
	if f.client != nil {
		return f.client, nil
	}
	if f.opts.ConnectionString == "" {
		return nil, fmt.Errorf("%w: Azure connection string", core.ErrMissingOption)
	}
	client, err := azblob.NewClientFromConnectionString(f.opts.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	f.client = client
	return client, nil
}
