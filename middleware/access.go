package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrEthical07/authtools"
)

// DefaultHeader is read when RequireAccessToken gets an empty header name.
const DefaultHeader = "Authorization"

type payloadContextKey struct{}

// PayloadFromContext returns the token payload stored by RequireAccessToken.
func PayloadFromContext(ctx context.Context) (authtools.TokenPayload, bool) {
	p, ok := ctx.Value(payloadContextKey{}).(authtools.TokenPayload)
	return p, ok
}

// WithPayload returns a copy of ctx carrying p.
func WithPayload(ctx context.Context, p authtools.TokenPayload) context.Context {
	return context.WithValue(ctx, payloadContextKey{}, p)
}

// RequireAccessToken returns middleware that admits only requests whose
// header holds a valid access token as its second whitespace-separated
// field, as in "Bearer <token>".
func RequireAccessToken(engine *authtools.Engine, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeJSON(w, http.StatusInternalServerError, authtools.ServerError[authtools.NoData]())
				return
			}

			res := engine.ValidateAccessToken(tokenFromHeader(r.Header.Get(header)))
			switch {
			case res.Valid && res.Payload != nil:
				next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), *res.Payload)))
			case res.Code == authtools.CodeAccessTokenMissing:
				writeJSON(w, http.StatusBadRequest, authtools.Failure[authtools.NoData](res.Code))
			default:
				writeJSON(w, http.StatusForbidden, authtools.Failure[authtools.NoData](res.Code))
			}
		})
	}
}

func tokenFromHeader(value string) string {
	fields := strings.Fields(value)
	if len(fields) < 2 {
		return ""
	}
	return fields[1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("middleware: encode response", "error", err)
	}
}
