package mw

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
)

const testKey = "0123456789abcdef0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

// --- KeySet tests ---

func TestKeySet(t *testing.T) {
	ks := NewKeySet([]string{testKey, "  ", "second-key"})
	assert.True(t, ks.Enabled())
	assert.True(t, ks.Valid(testKey))
	assert.True(t, ks.Valid("second-key"))
	assert.False(t, ks.Valid("0123"))
	assert.False(t, ks.Valid(""))

	assert.False(t, NewKeySet(nil).Enabled())
	assert.False(t, NewKeySet([]string{""}).Enabled())

	var nilSet *KeySet
	assert.False(t, nilSet.Enabled())
	assert.False(t, nilSet.Valid(testKey))
}

// --- RawAPIKeyAuth tests ---

func TestRawAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{"valid bearer", map[string]string{"Authorization": "Bearer " + testKey}, http.StatusOK, "ok"},
		{"valid x-api-key", map[string]string{"X-API-Key": testKey}, http.StatusOK, "ok"},
		{"missing", nil, http.StatusUnauthorized, "API key required"},
		{"invalid", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized, "invalid API key"},
		{"bearer wins over x-api-key", map[string]string{"Authorization": "Bearer " + testKey, "X-API-Key": "wrong"}, http.StatusOK, "ok"},
		{"non-bearer authorization falls back", map[string]string{"Authorization": "Basic abc", "X-API-Key": testKey}, http.StatusOK, "ok"},
	}

	handler := RawAPIKeyAuth(testLogger(), NewKeySet([]string{testKey}))(okHandler())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.body)
		})
	}
}

func TestRawAPIKeyAuth_DisabledWithoutKeys(t *testing.T) {
	handler := RawAPIKeyAuth(testLogger(), NewKeySet(nil))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// --- HumaAuth tests ---

type pingOutput struct {
	Body struct {
		Pong bool `json:"pong"`
	}
}

func ping(_ context.Context, _ *struct{}) (*pingOutput, error) {
	out := &pingOutput{}
	out.Body.Pong = true
	return out, nil
}

func newAuthAPI(t *testing.T, keys []string) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	api.UseMiddleware(HumaAuth(api, testLogger(), NewKeySet(keys)))
	PublicGet(api, "/public", ping)
	ProtectedGet(api, "/protected", ping)
	return api
}

func TestHumaAuth_PublicOperation(t *testing.T) {
	api := newAuthAPI(t, []string{testKey})

	resp := api.Get("/public")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHumaAuth_ProtectedOperation(t *testing.T) {
	api := newAuthAPI(t, []string{testKey})

	resp := api.Get("/protected")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/protected", "Authorization: Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/protected", "Authorization: Bearer "+testKey)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get("/protected", "X-API-Key: "+testKey)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHumaAuth_NoKeysConfigured(t *testing.T) {
	api := newAuthAPI(t, nil)

	resp := api.Get("/protected")
	assert.Equal(t, http.StatusOK, resp.Code)
}

// --- Protected tests ---

func TestProtected(t *testing.T) {
	assert.True(t, Protected(&huma.Operation{Security: []map[string][]string{{SecurityScheme: {}}}}))
	assert.False(t, Protected(&huma.Operation{}))
	assert.False(t, Protected(&huma.Operation{Security: []map[string][]string{{"otherScheme": {}}}}))
	assert.False(t, Protected(&huma.Operation{Security: []map[string][]string{}}))
	assert.False(t, Protected(nil))
}

// --- keyPrefix tests ---

func TestKeyPrefix(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"long key", "abcdefghij", "abcd"},
		{"exactly 4", "abcd", "abcd"},
		{"short key", "ab", "ab"},
		{"empty key", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, keyPrefix(tc.key))
		})
	}
}

// --- Middleware tests ---

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimitByIP(2)(okHandler())
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	unlimited := RateLimitByIP(0)(okHandler())
	rec := httptest.NewRecorder()
	unlimited.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogging_PassesThroughStatus(t *testing.T) {
	handler := RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
