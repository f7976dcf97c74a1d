package utils

import (
	"errors"
	"os"
	"time"

	"vecindo/config"

	"github.com/golang-jwt/jwt"
)

func secretKey() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		secret = "VECINDO"
	}
	return []byte(secret)
}

// GenerateToken creates a signed JWT token for the given subject (a user ID).
// The token carries the user's name, email and role and expires after the
// specified duration.
func GenerateToken(subject, name, email, role string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"name":  name,
		"email": email,
		"role":  role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey())
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey(), nil
	})
}

// ExtractClaimsFromToken validates a token string and returns its claims.
func ExtractClaimsFromToken(tokenString string) (jwt.MapClaims, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}

	return claims, nil
}
