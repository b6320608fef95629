// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/memctx-go/internal/knowledge"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/raphaelgruber/memctx-go/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Builder   *service.Builder
	Scorer    *service.Scorer
	Knowledge *knowledge.Client
	Metrics   *metrics.Collector
	Logger    *slog.Logger
}
