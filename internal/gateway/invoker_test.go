package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvokerJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	inv := NewInvoker(5 * time.Second)
	resp, err := inv.Do(context.Background(), &OutboundRequest{
		Method:      http.MethodPost,
		URL:         srv.URL,
		Header:      http.Header{},
		Body:        []byte(`{"a":1}`),
		ContentType: "application/json",
	})
	require.NoError(t, err)
	require.NoError(t, resp.ParseErr)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yes", resp.Headers["X-Upstream"])
	assert.Equal(t, map[string]any{"ok": true}, resp.Data)
}

func TestInvokerTextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("pong"))
	}))
	defer srv.Close()

	inv := NewInvoker(5 * time.Second)
	resp, err := inv.Do(context.Background(), &OutboundRequest{Method: http.MethodGet, URL: srv.URL, Header: http.Header{}})
	require.NoError(t, err)
	require.NoError(t, resp.ParseErr)

	// non-JSON is wrapped, never passed through a JSON parser
	assert.Equal(t, map[string]any{
		"content":     "pong",
		"contentType": "text/plain; charset=utf-8",
	}, resp.Data)
}

func TestInvokerBadJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	inv := NewInvoker(5 * time.Second)
	resp, err := inv.Do(context.Background(), &OutboundRequest{Method: http.MethodGet, URL: srv.URL, Header: http.Header{}})
	require.NoError(t, err, "a reachable but unparsable upstream is not a transport failure")

	assert.Error(t, resp.ParseErr)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "upstream status survives a parse failure")
}

func TestInvokerConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens here anymore

	inv := NewInvoker(time.Second)
	_, err := inv.Do(context.Background(), &OutboundRequest{Method: http.MethodGet, URL: srv.URL, Header: http.Header{}})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestInvokerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	inv := NewInvoker(20 * time.Millisecond)
	_, err := inv.Do(context.Background(), &OutboundRequest{Method: http.MethodGet, URL: srv.URL, Header: http.Header{}})
	assert.ErrorIs(t, err, ErrUpstreamUnavailable, "a slow upstream is reported as unavailable")
}
