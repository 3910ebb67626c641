package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"intervuai/backend/internal/account"
	"intervuai/backend/internal/apperr"
	"intervuai/backend/internal/utils"
)

type TokenParser interface {
	Parse(tokenString string) (*account.Claims, error)
}

var errMissingToken = apperr.Unauthorized("Access denied. No token provided.")

// Authenticate requires a valid bearer token and stores its claims on the request.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.Error(w, errMissingToken, false)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				utils.Error(w, err, false)
				return
			}
			if _, err := primitive.ObjectIDFromHex(claims.UserID); err != nil {
				utils.Error(w, apperr.ErrInvalidToken, false)
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return token, token != ""
}

func ClaimsFrom(r *http.Request) (*account.Claims, bool) {
	claims, ok := r.Context().Value(claimsKey).(*account.Claims)
	return claims, ok
}

// UserID returns the authenticated caller. Only valid behind Authenticate.
func UserID(r *http.Request) primitive.ObjectID {
	claims, ok := ClaimsFrom(r)
	if !ok {
		return primitive.NilObjectID
	}
	id, _ := primitive.ObjectIDFromHex(claims.UserID)
	return id
}
