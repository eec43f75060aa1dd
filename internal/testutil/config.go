// Package testutil provides testing utilities for the pcetile server.
package testutil

import (
	"testing"
	"time"

	"github.com/ochrefield/pcetile/pkg/config"
)

// NewTestConfig builds a valid Config rooted at a fresh temp directory,
// for tests that need a config but don't care about its specific values.
func NewTestConfig(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		TempDir:                t.TempDir(),
		Timeout:                30 * time.Second,
		LogLevel:               "info",
		DefaultBackgroundColor: "#000000",
		DefaultBATWidth:        32,
		DefaultBATHeight:       32,
	}
}
