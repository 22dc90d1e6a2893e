package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer produces signed bearer tokens over public user claims.
//
// With an empty secret it reproduces the original service's behavior:
// every Issue call generates a fresh random 256-bit key, signs with it
// and discards it, so nobody (including this process) can verify the
// token later. Configure a fixed secret to get the conventional shared
// signing key instead.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs {username, email} plus expiry metadata and returns the
// token together with the hex-encoded key material that signed it. The
// issuer keeps no copy of an ephemeral key once the call returns.
func (i *Issuer) Issue(username, email string) (token string, secret string, err error) {
	key := i.secret

	if len(key) == 0 {
		key, err = randomKey()

		if err != nil {
			return "", "", err
		}
	}

	now := time.Now().UTC()

	claims := Claims{
		Username: username,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	token, err = t.SignedString(key)

	if err != nil {
		return "", "", err
	}

	return token, string(key), nil
}

// 32 random bytes, hex encoded, matching the original key format.
func randomKey() ([]byte, error) {
	buf := make([]byte, 32)

	_, err := rand.Read(buf)

	if err != nil {
		return nil, err
	}

	return []byte(hex.EncodeToString(buf)), nil
}
