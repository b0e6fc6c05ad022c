// Package testhelpers provides shared helpers for package tests.
package testhelpers

import (
	"github.com/napieracademy/sitemap-manager/internal/logger"
)

// NewTestLogger creates a logger suitable for testing (discards output).
func NewTestLogger() logger.Logger {
	return logger.NewNop()
}
