package middleware

import (
	"mime"
	"net/http"

	"github.com/timschopinski/hotel-management-system/pkg/logger"
)

// ContentTypeValidation rejects body-carrying requests that do not declare
// application/json.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				if r.ContentLength != 0 {
					mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
					if err != nil || mediaType != "application/json" {
						log.Warn("Unsupported content type",
							"request_id", requestIDFromContext(r.Context()),
							"content_type", r.Header.Get("Content-Type"),
							"path", r.URL.Path,
						)
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusUnsupportedMediaType)
						_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxRequestSize caps the request body; oversized bodies fail inside the
// handler's decode with http.MaxBytesError.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
