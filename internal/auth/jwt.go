package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// TokenPair mirrors the simplejwt-style response the frontend expects.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Claims carried in both access and refresh tokens.
type Claims struct {
	UserID   string
	Email    string
	UserType string
}

func getJWTSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not set")
	}
	return []byte(secret), nil
}

func GenerateTokenPair(userID, email, userType string) (*TokenPair, error) {
	if userID == "" {
		return nil, errors.New("empty userID passed to GenerateTokenPair")
	}

	access, err := signToken(userID, email, userType, "access", accessTokenTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := signToken(userID, email, userType, "refresh", refreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

func signToken(userID, email, userType, tokenUse string, ttl time.Duration) (string, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"userID":    userID,
		"email":     email,
		"user_type": userType,
		"token_use": tokenUse,
		"exp":       time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses an access token and returns its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	return validate(tokenString, "access")
}

// ValidateRefreshToken parses a refresh token and returns its claims.
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return validate(tokenString, "refresh")
}

func validate(tokenString, expectedUse string) (*Claims, error) {
	secret, err := getJWTSecret()
	if err != nil {
		return nil, err
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	if use, _ := claims["token_use"].(string); use != expectedUse {
		return nil, errors.New("wrong token type")
	}

	userID, _ := claims["userID"].(string)
	email, _ := claims["email"].(string)
	userType, _ := claims["user_type"].(string)

	return &Claims{UserID: userID, Email: email, UserType: userType}, nil
}
