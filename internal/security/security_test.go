package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"
)

func TestSignAndParseToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := SignToken("secret", "student-42", "kid@example.com", "Kid", RoleStudent, 24*time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, errParse := ParseToken("secret", signed)
	if errParse != nil {
		t.Fatalf("parse: %v", errParse)
	}
	if claims.PrincipalID != "student-42" || claims.Email != "kid@example.com" || claims.Role != RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	signed, err := SignToken("secret", "id", "a@b.c", "", RoleAdmin, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseToken("other-secret", signed); errParse == nil {
		t.Fatal("expected invalid token error")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	past := time.Now().Add(-48 * time.Hour)
	signed, err := SignToken("secret", "id", "a@b.c", "", RoleStudent, 24*time.Hour, past)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, errParse := ParseToken("secret", signed); errParse == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(hash, "hunter22") {
		t.Fatal("expected password to verify")
	}
	if VerifyPassword(hash, "hunter23") {
		t.Fatal("wrong password must not verify")
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"data":{"user":{"id":"1"}}}`)
	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(payload)
	signature := hex.EncodeToString(mac.Sum(nil))

	if !VerifyWebhookSignature("whsec", payload, signature) {
		t.Fatal("expected valid signature to verify")
	}
	if VerifyWebhookSignature("whsec", payload, "deadbeef") {
		t.Fatal("bad signature must not verify")
	}
	if VerifyWebhookSignature("", payload, signature) {
		t.Fatal("empty secret must not verify")
	}
}
