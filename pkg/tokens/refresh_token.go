package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshClaims is the payload of a refresh token. It carries the same
// SessionID as the access token issued alongside it.
type RefreshClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

func RefreshClaimsFromToken(tokenStr string, refreshSecret []byte) (*RefreshClaims, error) {
	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return refreshSecret, nil
	})
	if err != nil || !tkn.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	return &claims, nil
}
