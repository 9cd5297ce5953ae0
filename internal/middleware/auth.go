package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/tripdiary/tripadmin/internal/apperror"
	"github.com/tripdiary/tripadmin/internal/ctxkeys"
	"github.com/tripdiary/tripadmin/internal/handler"
	"github.com/tripdiary/tripadmin/internal/service"
)

var (
	errAuthRequired  = apperror.Unauthorized("authentication required")
	errAdminRequired = apperror.Forbidden("admin role required")
)

// AuthMiddleware verifies a Bearer token, reloads the user it names and adds
// the caller to the context. Requests without a valid token, or whose user is
// gone or deactivated, continue anonymously; RequireAuth rejects them.
// The role always comes from the stored user, not from the token.
func AuthMiddleware(authService *service.AuthService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := authService.VerifyJWT(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			username, _ := claims["username"].(string)
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := userService.ActiveUser(username)
			if err != nil {
				slog.Debug("token user rejected", "username", username, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			// A renamed account must not be reachable through a token for another row
			if id, ok := claims["user_id"].(float64); ok && int64(id) != user.ID {
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithCaller(r.Context(), &ctxkeys.Identity{Username: user.Username, Role: user.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth ensures the caller is authenticated
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Caller(r.Context()) == nil {
			handler.Error(w, r, errAuthRequired)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireAdmin ensures the caller is authenticated with the ADMIN role
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !ctxkeys.Caller(r.Context()).IsAdmin() {
			handler.Error(w, r, errAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
