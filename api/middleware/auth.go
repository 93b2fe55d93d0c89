package middleware

import (
	"net/http"
	"strings"

	"github.com/yoshiakiban-byte/bottle-amigo/api/responses"
	pkgauth "github.com/yoshiakiban-byte/bottle-amigo/pkg/auth"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	pkgerrors "github.com/yoshiakiban-byte/bottle-amigo/pkg/errors"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithPrincipal(r.Context(), claims.PrincipalID, claims.Kind)
			if claims.Kind == enums.PrincipalKindStaff && claims.VenueID != nil && claims.Role != nil {
				ctx = WithVenueRole(ctx, *claims.VenueID, *claims.Role)
			}

			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.PrincipalID.String())
				if claims.VenueID != nil {
					ctx = logg.WithVenueID(ctx, claims.VenueID.String())
				}
				if claims.Role != nil {
					ctx = logg.WithActorRole(ctx, string(*claims.Role))
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
