package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cradle/pkg/requestcontext"
)

// JWTManager validates bearer tokens and extracts the caller principal.
// HS256 only; any other signing method is rejected.
type JWTManager struct {
	signingKey []byte
}

func NewJWTManager(signingKey string) *JWTManager {
	return &JWTManager{signingKey: []byte(signingKey)}
}

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a token, returning the principal it carries.
func (m *JWTManager) ValidateToken(tokenString string) (requestcontext.AuthPrincipal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.signingKey, nil
	})
	if err != nil {
		return requestcontext.AuthPrincipal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return requestcontext.AuthPrincipal{}, fmt.Errorf("invalid token")
	}
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return requestcontext.AuthPrincipal{}, fmt.Errorf("invalid subject claim %q", c.Subject)
	}
	return requestcontext.AuthPrincipal{UserID: userID, Role: c.Role}, nil
}

// IssueToken mints a token for the given principal. Exposed for tests and
// operational tooling; the service itself never issues tokens in production —
// that is the identity collaborator's job.
func (m *JWTManager) IssueToken(p requestcontext.AuthPrincipal, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.signingKey)
}

// TokenValidator is what RequireAuth needs from the JWT layer.
type TokenValidator interface {
	ValidateToken(tokenString string) (requestcontext.AuthPrincipal, error)
}

// RequireAuth rejects requests without a valid bearer token and threads the
// authenticated principal through context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, "Missing or invalid Authorization header")
				return
			}

			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeAuthError(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, principal)))
		})
	}
}

// RequireRole gates a subtree on the principal's role. Mount after RequireAuth.
func RequireRole(role string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			principal, ok := requestcontext.Principal(ctx)
			if !ok || principal.Role != role {
				logger.WarnContext(ctx, "forbidden - role mismatch",
					"required_role", role,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"error":"insufficient role"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write(fmt.Appendf(nil, `{"success":false,"error":"%s"}`, desc))
}
