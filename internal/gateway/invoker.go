package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TharinduNimesh/apiforge/internal/metrics"
)

// ErrUpstreamUnavailable marks a connection-level failure (or timeout)
// reaching the upstream API.
var ErrUpstreamUnavailable = errors.New("failed to connect to the external API")

// UpstreamResponse is the normalized result of a reachable upstream call.
// ParseErr is set when the body could not be parsed under its declared
// content type; status and headers are still those of the upstream.
type UpstreamResponse struct {
	StatusCode int
	Headers    map[string]string
	Data       any
	ParseErr   error
}

type Invoker struct {
	client *http.Client
}

func NewInvoker(timeout time.Duration) *Invoker {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Invoker{client: &http.Client{Timeout: timeout}}
}

// Do performs the outbound call and classifies the response by content type:
// application/json is parsed as structured data, anything else is wrapped as
// {content, contentType}.
func (i *Invoker) Do(ctx context.Context, out *OutboundRequest) (*UpstreamResponse, error) {
	var body io.Reader
	if len(out.Body) > 0 {
		body = bytes.NewReader(out.Body)
	}

	req, err := http.NewRequestWithContext(ctx, out.Method, out.URL, body)
	if err != nil {
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}
	req.Header = out.Header.Clone()
	if out.ContentType != "" {
		req.Header.Set("Content-Type", out.ContentType)
	}

	start := time.Now()
	res, err := i.client.Do(req)
	metrics.UpstreamSeconds.WithLabelValues(out.Method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Join(ErrUpstreamUnavailable, err)
	}
	defer res.Body.Close()

	resp := &UpstreamResponse{
		StatusCode: res.StatusCode,
		Headers:    flattenHeaders(res.Header),
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		resp.ParseErr = err
		return resp, nil
	}

	contentType := res.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			resp.ParseErr = err
			return resp, nil
		}
		resp.Data = data
		return resp, nil
	}

	if contentType == "" {
		contentType = "text/plain"
	}
	resp.Data = map[string]any{
		"content":     string(raw),
		"contentType": contentType,
	}
	return resp, nil
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}
