package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL and RefreshTokenTTL are the process-wide expiry windows
// for issued token pairs.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload of an access token. SessionID ties the token
// to the auth session row created at login.
type AccessClaims struct {
	Role      string `json:"role"`
	NIK       string `json:"nik,omitempty"`
	Email     string `json:"email,omitempty"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

func AccessClaimsFromToken(tokenStr string, accessSecret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return accessSecret, nil
	})
	if err != nil || !tkn.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	return &claims, nil
}
