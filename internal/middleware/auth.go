package middleware

import (
	"context"
	"net/http"
	"strings"

	"casework-backend/internal/auth"
	"casework-backend/internal/repositories"
)

type contextKey string

const WorkerIDKey contextKey = "worker_id"
const EmailKey contextKey = "email"
const RoleKey contextKey = "role"

type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	workerRepo *repositories.WorkerRepository
}

func NewAuthMiddleware(jwtManager *auth.JWTManager, workerRepo *repositories.WorkerRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		workerRepo: workerRepo,
	}
}

// Authenticate validates the bearer token and re-checks the worker row so
// deactivation and role changes take effect without waiting for token
// expiry.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		worker, err := m.workerRepo.Get(r.Context(), claims.WorkerID)
		if err != nil {
			http.Error(w, "Worker not found", http.StatusUnauthorized)
			return
		}

		if !worker.IsActive {
			http.Error(w, "Account deactivated. Please contact administrator.", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), WorkerIDKey, worker.ID)
		ctx = context.WithValue(ctx, EmailKey, worker.Email)
		ctx = context.WithValue(ctx, RoleKey, worker.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the authenticated worker has one of the allowed
// roles. It must be mounted inside Authenticate.
func (m *AuthMiddleware) RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetRoleFromContext(r.Context())
			if !ok {
				http.Error(w, "Authorization required", http.StatusUnauthorized)
				return
			}

			for _, allowed := range allowedRoles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
		})
	}
}

// RequireAdmin ensures the authenticated worker has the admin role
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole("admin")(next)
}

// GetWorkerIDFromContext extracts worker ID from request context
func GetWorkerIDFromContext(ctx context.Context) (int, bool) {
	workerID, ok := ctx.Value(WorkerIDKey).(int)
	return workerID, ok
}

// GetEmailFromContext extracts email from request context
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}

// GetRoleFromContext extracts role from request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}
