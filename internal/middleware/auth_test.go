package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jwt_internal "github.com/lazythumb/lazythumb/internal/jwt"
)

func TestAuth(t *testing.T) {
	jwtService := jwt_internal.New("test_secret", time.Hour)
	adminToken, _ := jwtService.NewToken("admin@example.com", true)
	userToken, _ := jwtService.NewToken("user@example.com", false)

	tests := []struct {
		name            string
		adminOnly       bool
		cookie          *http.Cookie
		authHeader      string
		expectedStatus  int
		expectedSubject string
	}{
		{
			name:            "Valid token - Admin",
			adminOnly:       true,
			cookie:          &http.Cookie{Name: "accessToken", Value: adminToken},
			expectedStatus:  http.StatusOK,
			expectedSubject: "admin@example.com",
		},
		{
			name:            "Valid token - Non-admin",
			adminOnly:       false,
			cookie:          &http.Cookie{Name: "accessToken", Value: userToken},
			expectedStatus:  http.StatusOK,
			expectedSubject: "user@example.com",
		},
		{
			name:            "Bearer header instead of cookie",
			adminOnly:       false,
			authHeader:      "Bearer " + userToken,
			expectedStatus:  http.StatusOK,
			expectedSubject: "user@example.com",
		},
		{
			name:           "No token",
			adminOnly:      false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid token",
			adminOnly:      false,
			cookie:         &http.Cookie{Name: "accessToken", Value: "invalid_token"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Non-admin accessing admin route",
			adminOnly:      true,
			cookie:         &http.Cookie{Name: "accessToken", Value: userToken},
			expectedStatus: http.StatusForbidden,
		},
	}

	auth := NewAuth(jwtService)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "http://example.com", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			middleware := auth.NeedAuth()
			if tt.adminOnly {
				middleware = auth.AdminOnly()
			}
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := r.Context().Value(ClaimsKey).(*jwt_internal.Claims)
				require.True(t, ok, "Auth should always propagate claims thru context")
				assert.Equal(t, tt.expectedSubject, claims.Subject)

				w.WriteHeader(http.StatusOK)
			}))
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code, "handler returned wrong status code")
		})
	}
}
