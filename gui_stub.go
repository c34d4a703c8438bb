//go:build console

package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// runEmbeddedUI is a stub for console-only builds
func runEmbeddedUI(ctx context.Context, session *Session, logger *zap.Logger) error {
	return fmt.Errorf("embedded UI not available in console build. Use -web flag for external browser mode")
}
