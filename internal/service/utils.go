package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/MuhammedFaaik/f66/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func GenerateToken(uid uint, username string) (string, error) {
	duration, err := time.ParseDuration(config.AppConfig.JWT.ExpireDuration)
	if err != nil {
		return "", fmt.Errorf("invalid jwt expire_duration %q: %w", config.AppConfig.JWT.ExpireDuration, err)
	}

	claims := jwt.MapClaims{
		"uid":      uid,
		"username": username,
		"exp":      time.Now().Add(duration).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWT.Secret))
}

// ParseToken verifies a token and returns the embedded identity.
func ParseToken(tokenStr string) (int64, string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWT.Secret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid claims")
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return 0, "", errors.New("invalid uid claim")
	}
	username, _ := claims["username"].(string)
	return int64(uid), username, nil
}
