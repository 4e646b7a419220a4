package envelope

import (
	"context"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/kuber-voice/core/envelope"

var (
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	fallbackCounter, _ = meter.Int64Counter("envelope.fallbacks",
		metric.WithDescription("Model outputs replaced by the fallback envelope"))
)

func recordFallback(reason string) {
	fallbackCounter.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}
