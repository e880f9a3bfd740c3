package handlers

import (
	"context"
	"net/http"
	"strings"

	"rtchat/auth"
	"rtchat/services"
)

type ctxKey int

const identityKey ctxKey = iota

// RequireAuth verifies the bearer credential and stashes the resulting
// identity in the request context.
func RequireAuth(svc *services.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing token")
			return
		}

		identity, err := svc.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next(w, r.WithContext(ctx))
	}
}

func identityFrom(r *http.Request) (auth.Identity, bool) {
	identity, ok := r.Context().Value(identityKey).(auth.Identity)
	return identity, ok
}
