package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/technova/storefront-backend/pkg/config"
)

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "technova-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := jwtTestConfig()
	userID := uuid.New()

	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: userID,
		Email:  "shopper@example.com",
		JTI:    "token-1",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("unexpected user id %s", claims.UserID)
	}
	if claims.Email != "shopper@example.com" {
		t.Fatalf("unexpected email %s", claims.Email)
	}
	if claims.ID != "token-1" {
		t.Fatalf("unexpected jti %s", claims.ID)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := jwtTestConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New()})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	other := cfg
	other.Secret = "different"
	if _, err := ParseAccessToken(other, signed); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	cfg := jwtTestConfig()
	signed, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		UserID: uuid.New(),
		JTI:    "expired-jti",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expiry validation failure")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("expected expired parse to succeed: %v", err)
	}
	if claims.ID != "expired-jti" {
		t.Fatalf("unexpected jti %s", claims.ID)
	}
}

func TestMintAccessTokenRequiresUserID(t *testing.T) {
	if _, err := MintAccessToken(jwtTestConfig(), time.Now(), AccessTokenPayload{}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}
