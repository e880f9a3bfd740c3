package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rtchat/errs"
)

// Claims is the payload carried by every issued credential.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Identity is the verified result of a credential check.
type Identity struct {
	UserID string
	Email  string
}

// IssueToken signs a credential binding userID and email for ttl.
func IssueToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "rtchat",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken validates signature and expiry. Any malformed, forged or
// expired token comes back as errs.ErrUnauthorized; it never panics.
func VerifyToken(secret, tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, errs.ErrUnauthorized
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, errs.ErrUnauthorized
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return Identity{}, errs.ErrUnauthorized
	}

	return Identity{UserID: claims.Subject, Email: claims.Email}, nil
}
