package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal roles carried in JWT claims.
const (
	// RoleStudent marks a learner token.
	RoleStudent = "student"
	// RoleAdmin marks a moderator/operator token.
	RoleAdmin = "admin"
)

// ErrInvalidToken indicates a token failed signature or claim validation.
var ErrInvalidToken = errors.New("security: invalid token")

// Claims are the JWT claims issued to students and admins.
type Claims struct {
	PrincipalID string `json:"principal_id"`
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for the principal.
func SignToken(secret, principalID, email, name, role string, expiry time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("security: missing jwt secret")
	}
	claims := Claims{
		PrincipalID: principalID,
		Email:       email,
		Name:        name,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, errSign := token.SignedString([]byte(secret))
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// ParseToken validates a token and returns its claims.
func ParseToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	token, errParse := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("security: unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if errParse != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.PrincipalID == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
