package middleware

import (
	"context"
	"net/http"
	"strings"

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"
	jwt_internal "github.com/lazythumb/lazythumb/internal/jwt"
	"github.com/lazythumb/lazythumb/internal/utils"
)

// Key to store the verified claims in the request context
type key int

const ClaimsKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that requires a valid token
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.auth(false)
}

// AdminOnly returns middleware that additionally requires the admin claim
func (a *Auth) AdminOnly() func(http.Handler) http.Handler {
	return a.auth(true)
}

func (a *Auth) auth(adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.extractClaims(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if adminOnly && !claims.Admin {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractClaims pulls the token from the cookie (browser clients) or the
// Authorization header (API clients) and verifies it.
func (a *Auth) extractClaims(r *http.Request) (*jwt_internal.Claims, error) {
	var tokenString string
	if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, &internal_errors.ErrorWithStatusCode{Message: "Missing access token", StatusCode: http.StatusUnauthorized}
	}
	return a.jwtService.DecodeToken(tokenString)
}
