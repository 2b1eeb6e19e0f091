// Package storage defines how raw file bytes are fetched from remote
// object stores. Implementations live in subpackages (s3, azure).
package storage

import "context"

// Fetcher retrieves the full contents of the object named by location.
// Location syntax is defined by each implementation.
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}
