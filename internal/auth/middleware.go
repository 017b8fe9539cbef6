package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"gocatalog/internal/common"
)

type principalKey struct{}

// WithPrincipal stores the authenticated principal on ctx.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func PrincipalFrom(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(string)
	return p, ok && p != ""
}

// Middleware rejects requests without a valid session token. The token comes
// from "Authorization: Bearer <token>" or, for websocket upgrades that cannot
// set headers, the "token" query parameter.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := tokenFromRequest(r)
		if !ok {
			common.WriteError(w, r, common.ErrUnauthenticated)
			return
		}

		claims, err := g.tokens.Validate(tokenString)
		if err != nil {
			logrus.WithField("path", r.URL.Path).WithError(err).Debug("token rejected")
			common.WriteError(w, r, common.ErrUnauthenticated)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), claims.Principal)))
	})
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return "", false
		}
		return parts[1], true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// ContextSession answers the catalog's session question from the request
// context populated by Middleware.
type ContextSession struct{}

func (ContextSession) Authenticated(ctx context.Context) bool {
	_, ok := PrincipalFrom(ctx)
	return ok
}
