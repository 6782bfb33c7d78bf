package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every token this package creates.
const Issuer = "portfolio-api"

var (
	// ErrNoToken means the request carried no bearer token.
	ErrNoToken = errors.New("no bearer token")
	// ErrEmptySecret is returned when signing without a secret.
	ErrEmptySecret = errors.New("empty signing secret")
)

// Claims は管理者トークンのクレーム
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken は subject 用の HS256 トークンを生成する
func IssueToken(secret []byte, subject string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken はトークンの署名と有効期限を検証する。
// Only HS256 is accepted; no role or subject is required.
func VerifyToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
