package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// RequireRole allows the request through only when the authenticated caller
// has one of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logrus.WithFields(logrus.Fields{
				"user_id": claims.UserID,
				"role":    claims.Role,
			}).Warn("Forbidden: insufficient role")
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
