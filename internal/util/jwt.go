package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zack12Ali/sb1-a2fvdq/config"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

// GenerateToken issues an HS256 session token whose subject is userID.
func GenerateToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	})

	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

// ValidateToken checks a session token and returns its subject.
func ValidateToken(tokenString string) (string, error) {
	claims, err := ParseToken(tokenString, config.AppConfig.JWTSecret)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// TokenExpiry returns the expiry of a token that already passed validation.
func TokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ParseToken(tokenString, config.AppConfig.JWTSecret)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Now().Add(TokenTTL), nil
	}
	return claims.ExpiresAt.Time, nil
}

// ParseToken validates an HS256 token against secret and returns its registered claims.
// A token without a subject is rejected.
func ParseToken(tokenString, secret string) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// ProviderClaims is the identity asserted by a trusted sign-in provider.
type ProviderClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// ParseProviderToken validates an HS256 identity token signed with the provider secret.
func ParseProviderToken(tokenString, secret string) (*ProviderClaims, error) {
	if secret == "" {
		return nil, errors.New("no provider secret configured")
	}

	claims := &ProviderClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("token lacks subject or email")
	}
	return claims, nil
}

const (
	passwordResetPurpose = "password_reset"
	passwordResetTTL     = time.Hour
)

type resetClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// GeneratePasswordResetToken issues a one hour token that lets the holder reset userID's password.
func GeneratePasswordResetToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{
		Purpose: passwordResetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(passwordResetTTL)),
		},
	})
	return token.SignedString(resetKey())
}

// resetKey keeps reset tokens from validating as session tokens and vice versa.
func resetKey() []byte {
	return []byte(config.AppConfig.JWTSecret + ":" + passwordResetPurpose)
}

// ParsePasswordResetToken returns the user id of a valid reset token. Session tokens are rejected.
func ParsePasswordResetToken(tokenString string) (string, error) {
	claims := &resetClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return resetKey(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Purpose != passwordResetPurpose || claims.Subject == "" {
		return "", errors.New("invalid reset token")
	}
	return claims.Subject, nil
}
