package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "claims"

// ClaimsFromContext は context から検証済みクレームを取得する
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	v, ok := ctx.Value(claimsKey).(*Claims)
	return v, ok
}

// WithClaims は context にクレームをセットする
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(token), nil
}

// RequireBearer は Bearer トークン必須ミドルウェア。
// A missing or unverifiable token gets the same 401 and next never runs.
func RequireBearer(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				unauthorized(w)
				return
			}

			claims, err := VerifyToken(secret, token)
			if err != nil {
				slog.Warn("token verification failed", "error", err, "remote_addr", r.RemoteAddr)
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// UnauthorizedMessage is the body message for every rejected request.
const UnauthorizedMessage = "Not authorized"

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": UnauthorizedMessage})
}
