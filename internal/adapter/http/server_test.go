package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/forecast-trigger-etl/internal/adapter/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBuilder stands in for the table builder behind /readyz.
type stubBuilder struct {
	err error
}

func (b *stubBuilder) CheckReadiness(_ context.Context) error { return b.err }

func serve(t *testing.T, builder *stubBuilder, path string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	srv := httpadapter.NewServer(":0", builder, slog.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]string
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealthz(t *testing.T) {
	rec, body := serve(t, &stubBuilder{}, "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready once a table is built", func(t *testing.T) {
		rec, body := serve(t, &stubBuilder{}, "/readyz")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("503 before the first table", func(t *testing.T) {
		rec, body := serve(t, &stubBuilder{err: errors.New("builder has not produced any tables yet")}, "/readyz")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not ready", body["status"])
		assert.Equal(t, "builder has not produced any tables yet", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec, _ := serve(t, &stubBuilder{}, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
