package speech

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/kuber-voice/core/speech"

var (
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	restartCounter, _ = meter.Int64Counter("speech.device_restarts",
		metric.WithDescription("Capture devices restarted after ending on their own"))
)
