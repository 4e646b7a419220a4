package backend

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/koscakluka/kuber-voice/core/envelope"
	"github.com/koscakluka/kuber-voice/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const maxRequestBytes = 1 << 20

// NewHandler serves the chat route with generator. Every response body is a
// valid envelope: generator output is recovered, and failures are answered
// with the backend failure envelope.
func NewHandler(generator llms.Generator) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST "+ChatPath, &chatHandler{generator: generator})
	return otelhttp.NewHandler(mux, "kuber-voice")
}

type chatHandler struct {
	generator llms.Generator
}

func (h *chatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	span := trace.SpanFromContext(ctx)

	var req ChatRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(&req); err != nil {
		err = fmt.Errorf("failed to decode chat request: %w", err)
		span.RecordError(err)
		logger.Warn("bad chat request", "error", err)
		h.write(w, r, http.StatusBadRequest, envelope.BackendFailure(), "bad_request")
		return
	}
	for _, entry := range req.History {
		if !entry.Role.IsValid() {
			logger.Warn("bad chat request", "error", "invalid history role", "role", string(entry.Role))
			h.write(w, r, http.StatusBadRequest, envelope.BackendFailure(), "bad_request")
			return
		}
	}

	ctx, span = tracer.Start(ctx, "generate chat reply")
	defer span.End()

	raw, err := h.generator.GenerateReply(ctx, req.History, req.Message)
	if err != nil {
		err = fmt.Errorf("failed to generate reply: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("critical error while generating reply", "error", err)
		h.write(w, r, http.StatusInternalServerError, envelope.BackendFailure(), "generator_error")
		return
	}

	reply, ok := envelope.Recover(raw)
	outcome := "ok"
	if !ok {
		outcome = "fallback"
	}
	h.write(w, r, http.StatusOK, reply, outcome)
}

func (h *chatHandler) write(w http.ResponseWriter, r *http.Request, status int, reply envelope.Envelope, outcome string) {
	requestCounter.Add(r.Context(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		logger.Error("failed to write chat response", "error", err)
	}
}
