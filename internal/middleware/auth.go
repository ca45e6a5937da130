package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/diarynotes/diary-go/internal/crypto"
	"github.com/diarynotes/diary-go/internal/model"
)

// HeaderAuthToken carries the token issued at login.
const HeaderAuthToken = "authorization-token"

type contextKey string

const profileIDKey contextKey = "profileID"

// TokenAuth returns middleware that validates the authorization-token header.
func TokenAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAuthToken)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), profileIDKey, claims.ProfileID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProfileIDFromContext extracts the authenticated profile ID from the request context.
func ProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileIDKey).(string)
	return id, ok && id != ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{Success: false, Message: msg, Error: http.StatusText(status)})
}
