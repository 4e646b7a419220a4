package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/koscakluka/kuber-voice/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrStatus = errors.New("backend returned non-2xx status")

const defaultTimeout = 60 * time.Second

// Client calls a remote reply service. It returns the raw response body so
// the caller can validate the envelope itself.
type Client struct {
	baseURL string
	client  *http.Client
}

type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ llms.Generator = (*Client)(nil)

func (c *Client) GenerateReply(ctx context.Context, history []llms.HistoryEntry, message string) (string, error) {
	ctx, span := tracer.Start(ctx, "post chat")
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if history == nil {
		history = []llms.HistoryEntry{}
	}
	body, err := json.Marshal(ChatRequest{History: history, Message: message})
	if err != nil {
		return fail(fmt.Errorf("error marshalling chat request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ChatPath, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("error creating chat request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("error sending chat request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading chat response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(fmt.Errorf("%w: %s", ErrStatus, resp.Status))
	}
	return string(respBody), nil
}
