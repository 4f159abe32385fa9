package mw

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// KeySet holds the API keys accepted by the daemon. An empty set disables auth.
type KeySet struct {
	keys [][]byte
}

// NewKeySet builds a key set, ignoring blank entries.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k != "" {
			ks.keys = append(ks.keys, []byte(k))
		}
	}
	return ks
}

// Enabled reports whether any key is configured.
func (k *KeySet) Enabled() bool {
	return k != nil && len(k.keys) > 0
}

// Valid reports whether key matches one of the configured keys.
func (k *KeySet) Valid(key string) bool {
	if k == nil {
		return false
	}
	candidate := []byte(key)
	match := 0
	for _, known := range k.keys {
		match |= subtle.ConstantTimeCompare(candidate, known)
	}
	return match == 1
}

// extractKey reads the Authorization: Bearer header first, then X-API-Key.
func extractKey(header func(string) string) string {
	const bearerPrefix = "Bearer "
	if auth := header("Authorization"); strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}
	return strings.TrimSpace(header("X-API-Key"))
}

// check validates the request's key. It returns an empty string on success,
// otherwise the reason to report.
func check(logger *slog.Logger, keys *KeySet, header func(string) string, method, path, remote string) string {
	if !keys.Enabled() {
		return ""
	}
	key := extractKey(header)
	if key == "" {
		logger.Warn("auth: API key missing",
			"method", method,
			"path", path,
			"remote_addr", remote,
		)
		return "Unauthorized: API key required"
	}
	if !keys.Valid(key) {
		logger.Warn("auth: invalid API key used",
			"key_prefix", keyPrefix(key),
			"method", method,
			"path", path,
			"remote_addr", remote,
		)
		return "Unauthorized: invalid API key"
	}
	logger.Debug("auth: authenticated API key", "key_prefix", keyPrefix(key))
	return ""
}

// HumaAuth returns a Huma middleware that enforces API keys on operations
// registered as protected. Public operations, the OpenAPI document and the
// docs page pass through.
func HumaAuth(api huma.API, logger *slog.Logger, keys *KeySet) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if !Protected(ctx.Operation()) {
			next(ctx)
			return
		}
		reason := check(logger, keys, ctx.Header, ctx.Method(), ctx.URL().Path, ctx.RemoteAddr())
		if reason != "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, reason)
			return
		}
		next(ctx)
	}
}

// RawAPIKeyAuth returns a Chi middleware for routes that bypass Huma, such
// as the WebSocket endpoint.
func RawAPIKeyAuth(logger *slog.Logger, keys *KeySet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if reason := check(logger, keys, r.Header.Get, r.Method, r.URL.Path, r.RemoteAddr); reason != "" {
				http.Error(w, reason, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// keyPrefix returns the first 4 characters of a key for safe logging.
func keyPrefix(key string) string {
	if len(key) >= 4 {
		return key[:4]
	}
	return key
}
