package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"pharmaops/pkg/domain"
	request "pharmaops/pkg/platform/middleware/request"
)

// Context keys for the authenticated caller.
type contextKeyActor struct{}
type contextKeyCompanyID struct{}

// GetActor retrieves the authenticated actor from the context. The zero
// Actor means the request was not authenticated.
func GetActor(ctx context.Context) domain.Actor {
	actor, ok := ctx.Value(contextKeyActor{}).(domain.Actor)
	if !ok {
		return domain.Actor{}
	}
	return actor
}

// GetCompanyID retrieves the caller's company from the context. Only vendor
// tokens carry one; ok is false otherwise.
func GetCompanyID(ctx context.Context) (domain.CompanyID, bool) {
	id, ok := ctx.Value(contextKeyCompanyID{}).(domain.CompanyID)
	return id, ok
}

// Verifier validates a bearer token and returns the claims the workflow
// cares about.
type Verifier struct {
	signingKey []byte
}

func NewVerifier(signingKey string) *Verifier {
	return &Verifier{signingKey: []byte(signingKey)}
}

type tokenClaims struct {
	actor     domain.Actor
	companyID *domain.CompanyID
}

func (v *Verifier) verify(tokenString string) (tokenClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return tokenClaims{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return tokenClaims{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := domain.ParseUserID(sub)
	if err != nil {
		return tokenClaims{}, fmt.Errorf("invalid subject: %w", err)
	}
	role := domain.Role(fmt.Sprint(claims["role"]))
	if !role.Valid() {
		return tokenClaims{}, fmt.Errorf("unknown role %q", claims["role"])
	}

	out := tokenClaims{actor: domain.Actor{ID: userID, Role: role}}
	if raw, ok := claims["companyId"].(string); ok && raw != "" {
		companyID, err := domain.ParseCompanyID(raw)
		if err != nil {
			return tokenClaims{}, fmt.Errorf("invalid company claim: %w", err)
		}
		out.companyID = &companyID
	}
	return out, nil
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and stashes the
// actor (and vendor company, if any) in the context.
func RequireAuth(verifier *Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := verifier.verify(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyActor{}, claims.actor)
			if claims.companyID != nil {
				ctx = context.WithValue(ctx, contextKeyCompanyID{}, *claims.companyID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not in the allowed
// set. Must run after RequireAuth.
func RequireRole(logger *slog.Logger, roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r.Context())
			if _, ok := allowed[actor.Role]; !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "forbidden access - role not allowed",
					"role", actor.Role,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
