package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	httputil "github.com/timschopinski/hotel-management-system/pkg/http"
	"github.com/timschopinski/hotel-management-system/pkg/logger"
)

const userIDKey contextKey = "user_id"

// TokenVerifier resolves a bearer token to a user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireAuth wraps a single route and rejects requests without a valid
// bearer token. Downstream handlers read the caller via UserID.
func RequireAuth(verifier TokenVerifier, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token, ok := bearerToken(r)
			if !ok {
				writeAuthError(w, log, apperrors.Unauthorized("missing bearer token"))
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next(w, r.WithContext(ctx), ps)
		}
	}
}

// UserID returns the authenticated caller set by RequireAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, log *logger.Logger, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "middleware", "RequireAuth", "error", writeErr)
	}
}
