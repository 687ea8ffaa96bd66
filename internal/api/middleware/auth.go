package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"

	"inkwell/internal/common"
	"inkwell/internal/common/security"
	"inkwell/internal/domain/model"
	"inkwell/internal/domain/repository"
)

type contextKey string

const currentUserCtxKey contextKey = "currentUser"

// Auth resolves bearer tokens to identities. The token only names a user id;
// the record is re-read from the store on every request so downstream policy
// checks always see the current role, not the role at issuance.
type Auth struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

func NewAuth(users repository.UserRepository, logger zerolog.Logger) *Auth {
	return &Auth{users: users, logger: logger}
}

// Authenticate rejects requests without a verifiable token. A token whose
// subject no longer exists in the store answers not-found: the credential is
// cryptographically fine, its user is gone.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header
		if err != nil || token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "authorization token required")
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "invalid token claims: "+err.Error())
			return
		}

		user, err := a.users.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				common.RespondWithError(w, http.StatusNotFound, "user not found")
				return
			}
			a.logger.Error().Err(err).Str("user_id", userID).Msg("resolve identity")
			common.RespondWithError(w, http.StatusInternalServerError, common.ErrInternalServer.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// ResolveIdentity is the lenient variant for public read routes: a valid
// token upgrades the request with an identity, anything else proceeds
// anonymous.
func (a *Auth) ResolveIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := security.GetUserIDFromClaims(claims)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.users.FindByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				a.logger.Warn().Err(err).Str("user_id", userID).Msg("resolve optional identity")
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, currentUserCtxKey, user)
}

// CurrentUser returns the resolved identity, or nil for anonymous requests.
func CurrentUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(currentUserCtxKey).(*model.User); ok {
		return user
	}
	return nil
}
