package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/reelmatch/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// Messages written for rejected requests.
const (
	MsgTokenMissing = "token is missing"
	MsgTokenExpired = "token has expired"
	MsgInvalidToken = "invalid token"
	MsgUserNotFound = "user not found"
)

// UserLoader loads the account a token was issued for.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// ErrorWriter writes an error response body.
type ErrorWriter func(w http.ResponseWriter, status int, message string)

// Middleware authenticates bearer tokens.
type Middleware struct {
	jwt      *JWTManager
	users    UserLoader
	writeErr ErrorWriter
	logger   *zap.Logger
}

// NewMiddleware creates the bearer token middleware.
func NewMiddleware(jwtManager *JWTManager, users UserLoader, writeErr ErrorWriter, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{jwt: jwtManager, users: users, writeErr: writeErr, logger: logger}
}

// RequireUser rejects requests without a valid token for an existing user, and
// stores the user in the request context otherwise.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			m.writeErr(w, http.StatusUnauthorized, MsgTokenMissing)
			return
		}
		userID, err := m.jwt.ValidateToken(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				m.writeErr(w, http.StatusUnauthorized, MsgTokenExpired)
				return
			}
			m.logger.Debug("token rejected", zap.Error(err))
			m.writeErr(w, http.StatusUnauthorized, MsgInvalidToken)
			return
		}
		user, err := m.users.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				m.writeErr(w, http.StatusUnauthorized, MsgUserNotFound)
				return
			}
			m.logger.Error("load token user", zap.Int64("user_id", userID), zap.Error(err))
			m.writeErr(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// WithUser returns a context carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userContextKey).(*models.User)
	return u, ok && u != nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
