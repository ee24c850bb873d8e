package service

import (
	"testing"

	"github.com/MuhammedFaaik/f66/pkg/config"
)

func setTestJWTConfig(expire string) {
	config.AppConfig = &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", ExpireDuration: expire},
	}
}

func TestGenerateTokenRejectsBadExpiry(t *testing.T) {
	setTestJWTConfig("not-a-duration")
	if _, err := GenerateToken(1, "alice"); err == nil {
		t.Fatal("expected error for malformed expire duration")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	setTestJWTConfig("168h")

	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	uid, username, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 42 || username != "alice" {
		t.Fatalf("claims = (%d, %q), want (42, alice)", uid, username)
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	setTestJWTConfig("168h")
	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, _, err := ParseToken(token + "x"); err == nil {
		t.Fatal("expected error for tampered token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPasswordHash("wrong-pass", hash) {
		t.Fatal("wrong password accepted")
	}
}
