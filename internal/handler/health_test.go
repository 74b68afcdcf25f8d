package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/api"
	"github.com/pkordes/car-rental/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	h := newHTTPHandler(t, handler.Services{})

	rec := do(t, h, request{method: http.MethodGet, path: "/healthz"})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[handler.HealthResponse](t, rec)
	require.Equal(t, "ok", body.Status)
}

func TestGetOpenAPI_servesEmbeddedDocument(t *testing.T) {
	h := newHTTPHandler(t, handler.Services{})

	rec := do(t, h, request{method: http.MethodGet, path: "/openapi.yaml"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(api.OpenAPI), rec.Body.String())
	assert.Contains(t, rec.Body.String(), "/api/bookings/{id}")
}
