package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/auth"
	"github.com/teranga-hr/payroll-backend-go/internal/domain/user"
	"github.com/teranga-hr/payroll-backend-go/internal/handler/http/response"
)

// RequireRole gates a route group to the given roles, read from the
// "role" claim of the access token.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			role, ok := claims["role"].(string)
			if !ok {
				response.HandleError(w, user.ErrAdminPrivilegeRequired)
				return
			}
			for _, allowed := range roles {
				if role == string(allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.HandleError(w, user.ErrAdminPrivilegeRequired)
		})
	}
}
