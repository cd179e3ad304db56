// Package testutil provides utilities for testing marech components.
//
// Key components:
//   - NewProject: in-memory project tree backed by afero.MemMapFs
//   - NewOSProject: the same layout written to a temporary directory
//   - Recorder: a transformer that records what it was called with
//
// Usage guidelines:
//   - Prefer NewProject; only CLI and logging tests need the real filesystem
//   - All test data should be defined inline, not in external files
package testutil
