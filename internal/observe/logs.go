package observe

import (
	"context"
	"log/slog"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// slogExporter writes OTel log records to a slog handler so package loggers
// end up in the binary's configured log output.
type slogExporter struct {
	handler slog.Handler
}

var _ sdklog.Exporter = (*slogExporter)(nil)

func (e *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	for _, record := range records {
		level := slogLevel(record.Severity())
		if !e.handler.Enabled(ctx, level) {
			continue
		}

		out := slog.NewRecord(record.Timestamp(), level, record.Body().AsString(), 0)
		if scope := record.InstrumentationScope().Name; scope != "" {
			out.AddAttrs(slog.String("scope", scope))
		}
		record.WalkAttributes(func(kv otellog.KeyValue) bool {
			out.AddAttrs(slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
			return true
		})

		if err := e.handler.Handle(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

func (e *slogExporter) Shutdown(context.Context) error   { return nil }
func (e *slogExporter) ForceFlush(context.Context) error { return nil }

// slogLevel reverses the otelslog bridge mapping (info is severity 9).
func slogLevel(severity otellog.Severity) slog.Level {
	if severity == otellog.SeverityUndefined {
		return slog.LevelInfo
	}
	return slog.Level(severity - otellog.SeverityInfo)
}

func slogValue(value otellog.Value) slog.Value {
	switch value.Kind() {
	case otellog.KindBool:
		return slog.BoolValue(value.AsBool())
	case otellog.KindInt64:
		return slog.Int64Value(value.AsInt64())
	case otellog.KindFloat64:
		return slog.Float64Value(value.AsFloat64())
	case otellog.KindString:
		return slog.StringValue(value.AsString())
	case otellog.KindBytes:
		return slog.AnyValue(value.AsBytes())
	case otellog.KindSlice:
		items := value.AsSlice()
		values := make([]any, 0, len(items))
		for _, item := range items {
			values = append(values, slogValue(item).Any())
		}
		return slog.AnyValue(values)
	case otellog.KindMap:
		entries := value.AsMap()
		attrs := make([]slog.Attr, 0, len(entries))
		for _, kv := range entries {
			attrs = append(attrs, slog.Attr{Key: kv.Key, Value: slogValue(kv.Value)})
		}
		return slog.GroupValue(attrs...)
	default:
		return slog.StringValue("")
	}
}
