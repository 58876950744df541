package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/rs/zerolog/log"
)

type contextKey string

// UserKey is the context key for the authenticated user.
const UserKey = contextKey("user")

// UserResolver looks up the user a token subject refers to.
type UserResolver interface {
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

// Middleware rejects requests without a valid bearer token whose subject
// resolves to an existing user. The user is passed down via the context.
func Middleware(issuer *TokenIssuer, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := bearerToken(r)
			if !ok {
				Unauthorized(w, "Not authenticated")
				return
			}

			userID, err := issuer.Authenticate(tokenStr)
			if err != nil {
				log.Debug().Err(err).Msg("Rejected bearer token")
				Unauthorized(w, "Could not validate credentials")
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				log.Warn().Err(err).Int64("user_id", userID).Msg("Token subject does not resolve to a user")
				Unauthorized(w, "Could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by Middleware.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(UserKey).(models.User)
	return user, ok
}

// Unauthorized writes a 401 with a bearer challenge.
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
