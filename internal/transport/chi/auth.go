package chi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gifexplorer/gifsearch/internal/domain"
)

// PrincipalResolver turns an opaque bearer credential into a principal.
type PrincipalResolver interface {
	Resolve(token string) (domain.Principal, error)
}

// StaticResolver resolves principals from a fixed token table.
type StaticResolver struct {
	tokens map[string]domain.Principal
}

// NewStaticResolver creates a resolver over a token → principal table.
func NewStaticResolver(tokens map[string]domain.Principal) *StaticResolver {
	return &StaticResolver{tokens: tokens}
}

// Resolve looks up the token.
func (r *StaticResolver) Resolve(token string) (domain.Principal, error) {
	p, ok := r.tokens[token]
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}

type principalKey struct{}

// PrincipalFromContext returns the authenticated principal, or nil for an
// anonymous request.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	if p, ok := ctx.Value(principalKey{}).(*domain.Principal); ok {
		return p
	}
	return nil
}

// PrincipalMiddleware attaches the resolved principal to the request context.
// Requests without a credential pass through anonymously; search works for
// anyone, only the profile-bound endpoints demand a principal. A credential
// that is present but invalid is rejected outright.
func PrincipalMiddleware(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, codeUnauthorized,
					"authorization header must use Bearer scheme")
				return
			}

			p, err := resolver.Resolve(auth[len(bearerPrefix):])
			if err != nil {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, &p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
