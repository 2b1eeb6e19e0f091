// Package core defines the shared language of structload.
//
// This package contains:
//   - The in-memory Table every parser and adapter produces
//   - Format and Source tags used to pick a parser and a transport
//   - The typed Error returned at the loader boundary
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
