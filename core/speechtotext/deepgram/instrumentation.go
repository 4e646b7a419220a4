package deepgram

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const scopeName = "github.com/koscakluka/kuber-voice/core/speechtotext/deepgram"

var (
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)

	unrequestedEndCounter, _ = meter.Int64Counter("deepgram.unrequested_stream_ends",
		metric.WithDescription("Live transcription streams closed by the server"))
)
