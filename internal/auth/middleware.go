package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"loan-intake/internal/models"
)

// AuthCookieName is the HTTP-only session cookie carrying the signed token.
const AuthCookieName = "authToken"

type contextKey string

const accountContextKey contextKey = "adminAccount"

// AccountFromContext returns the resolved account injected by
// RequirePermission, or nil outside a gated handler.
func AccountFromContext(ctx context.Context) *models.AdminAccount {
	if account, ok := ctx.Value(accountContextKey).(*models.AdminAccount); ok {
		return account
	}
	return nil
}

// TokenFromRequest extracts the session token from the authToken cookie or,
// failing that, a bearer Authorization header.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// SetAuthCookie writes the session cookie with the attributes required by the
// admin panel: HttpOnly, SameSite=Lax, path /, max-age matching the token ttl.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookie expires the session cookie (logout).
func ClearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequirePermission gates a route on the named capability; pass an empty
// string to accept any verified account. The resolved account lands in the
// request context, structurally separate from the rejection path: a denied
// request never reaches the wrapped handler.
func (r *PermissionResolver) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token := TokenFromRequest(req)
			if token == "" {
				writeForbidden(w)
				return
			}

			account, err := r.CheckPermission(req.Context(), token, permission)
			if err != nil {
				writeForbidden(w)
				return
			}

			ctx := context.WithValue(req.Context(), accountContextKey, account)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   "Unauthorized",
		"success": false,
	})
}
