package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/herostore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity applies when GenerateToken is called without a
// positive validity duration.
const DefaultTokenValidity = 15 * time.Minute

// Claims carries the subject (username) plus standard registered claims.
type Claims struct {
	jwt.RegisteredClaims
}

// SigningMethod resolves an HMAC algorithm name (HS256, HS384, HS512).
func SigningMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	m, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", alg)
	}
	return m, nil
}

// GenerateToken signs a token for subject that expires validityDuration from
// now. A non-positive duration falls back to DefaultTokenValidity.
func GenerateToken(subject string, secretKey []byte, method jwt.SigningMethod, validityDuration time.Duration) (string, error) {
	if validityDuration <= 0 {
		validityDuration = DefaultTokenValidity
	}

	now := time.Now()
	token := jwt.NewWithClaims(method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies signature, algorithm and expiry and returns
// the subject. Expired tokens yield common.ErrTokenExpired; every other
// failure, including a missing subject, yields common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte, method jwt.SigningMethod) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
