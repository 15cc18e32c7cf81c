// Package webhook talks to the external idea generation webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 1 << 20

// Request is the body posted to the webhook.
type Request struct {
	Prompt    string `json:"prompt"`
	Timestamp string `json:"timestamp"`
}

type Client struct {
	url  string
	http *http.Client
	now  func() time.Time
}

func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// Generate posts prompt to the webhook and returns the normalized answer.
func (c *Client) Generate(ctx context.Context, prompt string) (*model.Idea, error) {
	if c.url == "" {
		return nil, errors.New(errors.ErrUpstream, "idea webhook is not configured")
	}

	body, err := json.Marshal(Request{
		Prompt:    prompt,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "failed to encode webhook request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "failed to build webhook request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Timeout("Request timed out. Please try again.", err)
		}
		return nil, errors.Wrap(errors.ErrUpstream, "Unable to reach the idea service", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, errors.Timeout("Request timed out. Please try again.", err)
		}
		return nil, errors.Wrap(errors.ErrUpstream, "failed to read webhook response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrUpstream, fmt.Sprintf("Request failed with status %d", resp.StatusCode))
	}

	return Normalize(decodeBody(resp.Header.Get("Content-Type"), raw))
}

// decodeBody parses JSON bodies and passes anything else through as text.
func decodeBody(contentType string, raw []byte) interface{} {
	if strings.Contains(contentType, "application/json") {
		var data interface{}
		if err := json.Unmarshal(raw, &data); err == nil {
			return data
		}
	}
	return string(raw)
}

func isTimeout(ctx context.Context, err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
