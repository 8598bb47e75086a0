package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/lostfound/pkg/idx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("bogus"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), slogx.FromContext(context.Background()))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestHTTPMiddleware(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "auth", Env: "test", Level: "debug", Output: &buf})

	h := slogx.HTTPMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := slogx.WithUserID(r.Context(), 7)
		slogx.FromContext(ctx).Info("inside")
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates a request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		reqID := rec.Header().Get(slogx.RequestIDHeader)
		_, err := idx.Parse(reqID)
		require.NoError(t, err)

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 2)
		require.Equal(t, "inside", lines[0]["msg"])
		require.EqualValues(t, 7, lines[0]["user_id"])
		require.Equal(t, reqID, lines[0]["req_id"])
		require.Equal(t, "http_request", lines[1]["msg"])
		require.EqualValues(t, http.StatusTeapot, lines[1]["status"])
		require.Equal(t, "auth", lines[1]["service"])
	})

	t.Run("keeps a valid inbound request id", func(t *testing.T) {
		buf.Reset()
		want := idx.New().String()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.RequestIDHeader, want)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, want, rec.Header().Get(slogx.RequestIDHeader))
	})

	t.Run("replaces a malformed inbound request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(slogx.RequestIDHeader, "evil\nid")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.NotEqual(t, "evil\nid", rec.Header().Get(slogx.RequestIDHeader))
	})
}
