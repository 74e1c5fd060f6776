package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTarget struct {
	Days   int      `json:"days"`
	Cities []string `json:"cities"`
}

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"days": 3, "cities": ["Luxor"]}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "malformed", body: `{"days": 3,`, wantErr: "malformed JSON"},
		{name: "syntax error", body: `{"days": x}`, wantErr: "malformed JSON at offset"},
		{name: "wrong type", body: `{"days": "three"}`, wantErr: `field "days" must be of type int`},
		{name: "unknown field", body: `{"nights": 2}`, wantErr: `unknown field "nights"`},
		{name: "trailing data", body: `{"days": 1}{"days": 2}`, wantErr: "single JSON object"},
		{name: "too large", body: `{"cities": ["` + strings.Repeat("a", int(MaxBodyBytes)) + `"]}`, wantErr: "must not be larger than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			var dst decodeTarget
			err := DecodeJSONBody(rr, req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, 3, dst.Days)
				assert.Equal(t, []string{"Luxor"}, dst.Cities)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestErrorResponse(t *testing.T) {
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(w, r, http.StatusNotFound, "Trip plan not found")
	})
	handler = middleware.RequestID(handler)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips/x", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Trip plan not found", body["error"])
	assert.NotEmpty(t, body["request_id"])
}

func TestWriteJSONResponse(t *testing.T) {
	t.Run("encodes payload", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONResponse(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, map[string]int{"days": 2})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"days": 2}`, rr.Body.String())
	})

	t.Run("no content", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONResponse(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("unencodable payload", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteJSONResponse(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, make(chan int))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
