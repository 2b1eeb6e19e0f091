package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Adapter)
)

// Register adds an adapter factory to the registry under a
// connection-string scheme. Called by adapter implementations in their
// init() functions, once per scheme they accept.
func Register(scheme string, factory func(*slog.Logger) Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scheme] = factory
}

// Get retrieves an adapter factory by scheme.
func Get(scheme string) (func(*slog.Logger) Adapter, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[scheme]
	return f, ok
}

// NewAdapter creates a new adapter instance for the config's scheme.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Scheme == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	factory, ok := Get(cfg.Scheme)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Scheme,
			Available: ListAdapters(),
		}
	}
	return factory(logger), nil
}

// Open parses a connection string, creates the matching adapter and
// connects it. The caller must Close the returned adapter.
func Open(ctx context.Context, connString string, logger *slog.Logger) (Adapter, error) {
	cfg, err := ParseConnectionString(connString)
	if err != nil {
		return nil, err
	}

	a, err := NewAdapter(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := a.Connect(ctx, cfg); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAdapters returns all registered schemes (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a scheme is registered.
func IsRegistered(scheme string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[scheme]
	return ok
}

// UnknownAdapterError is returned when no adapter serves a scheme.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown database type %q\nAvailable adapters: %v\nHint: Check the scheme of your connection string (e.g. postgresql://user@host/db)", e.Type, e.Available)
}
