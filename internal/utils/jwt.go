package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

var jwtKey []byte

func init() {
	if err := godotenv.Load(); err != nil {
		log.Default().Println("No .env file found")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test_secret_key_minimum_32_characters_long_for_testing_only"
	}

	jwtKey = []byte(secret)
}

func ValidateJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}

	if secret == "test_secret_key_minimum_32_characters_long_for_testing_only" {
		return fmt.Errorf("cannot use default test secret in production")
	}

	return nil
}

// GenerateJWT issues a short-lived access token carrying the user id and the
// stable role code the authorization checker keys on.
func GenerateJWT(userID uint, roleCode string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  strconv.Itoa(int(userID)),
		"role": roleCode,
		"exp":  time.Now().Add(15 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// ParseJWT validates a token and returns the user id and role code.
func ParseJWT(tokenStr string) (uint, string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return jwtKey, nil
	})
	if err != nil || !token.Valid {
		return 0, "", fmt.Errorf("invalid token: %w", err)
	}

	sub, _ := claims["sub"].(string)
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, "", fmt.Errorf("invalid token subject")
	}

	roleCode, _ := claims["role"].(string)

	return uint(id), roleCode, nil
}
