package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/kuber-voice/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	turnCounter, _ = meter.Int64Counter("conversation.turns",
		metric.WithDescription("Turns appended to the conversation history"))
	backendFailureCounter, _ = meter.Int64Counter("conversation.backend_failures",
		metric.WithDescription("Backend calls that failed and were answered locally"))
)
