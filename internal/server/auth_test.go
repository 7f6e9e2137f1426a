package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/config"
)

func writeKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "jwt.pub")
	data := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return key, path
}

func signToken(t *testing.T, key *ecdsa.PrivateKey, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func authConfig(path string) *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Issuer = "login"
	cfg.JWT.PublicKeyPath = path
	cfg.Redis.BlacklistPrefix = "jwt:blacklist:"
	cfg.Players.InventorySize = 9
	cfg.Players.StackLimit = 64
	return cfg
}

func validClaims(id uuid.UUID) Claims {
	return Claims{
		PlayerID: id.String(),
		Username: "alice",
		Operator: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "login",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestValidateToken(t *testing.T) {
	key, path := writeKey(t)
	v, err := NewJWTValidator(authConfig(path), nil)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	id := uuid.New()
	player, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims(id)))
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if player.ID() != id || player.Username != "alice" || !player.Operator {
		t.Fatalf("unexpected player %+v", player)
	}
	if player.Inventory().Size() != 9 {
		t.Fatalf("expected configured inventory size")
	}
}

func TestValidateTokenRejects(t *testing.T) {
	key, path := writeKey(t)
	v, err := NewJWTValidator(authConfig(path), nil)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	id := uuid.New()

	wrongIssuer := validClaims(id)
	wrongIssuer.Issuer = "elsewhere"
	expired := validClaims(id)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	badID := validClaims(id)
	badID.PlayerID = "42"
	other, _ := writeKey(t)

	cases := map[string]string{
		"issuer":  signToken(t, key, wrongIssuer),
		"expired": signToken(t, key, expired),
		"bad id":  signToken(t, key, badID),
		"foreign": signToken(t, other, validClaims(id)),
		"garbage": "not-a-token",
	}
	for name, token := range cases {
		if _, err := v.ValidateToken(context.Background(), token); err == nil {
			t.Fatalf("%s: expected rejection", name)
		}
	}
}

func TestValidateTokenBlacklist(t *testing.T) {
	key, path := writeKey(t)
	db, mock := redismock.NewClientMock()
	v, err := NewJWTValidator(authConfig(path), db)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	id := uuid.New()
	mock.ExpectExists("jwt:blacklist:" + id.String()).SetVal(1)
	if _, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims(id))); !errors.Is(err, ErrBlacklisted) {
		t.Fatalf("expected blacklisted token, got %v", err)
	}

	mock.ExpectExists("jwt:blacklist:" + id.String()).SetErr(errors.New("redis down"))
	if _, err := v.ValidateToken(context.Background(), signToken(t, key, validClaims(id))); err != nil {
		t.Fatalf("expected redis failure ignored, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet redis expectations: %v", err)
	}
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Sec-WebSocket-Protocol", "access_token, abc")
	if got := extractTokenFromHeader(r); got != "abc" {
		t.Fatalf("expected protocol token, got %q", got)
	}

	r = httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Authorization", "Bearer def")
	if got := extractTokenFromHeader(r); got != "def" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	r = httptest.NewRequest("GET", "/ws?token=ghi", nil)
	if got := extractTokenFromHeader(r); got != "ghi" {
		t.Fatalf("expected query token, got %q", got)
	}
}

func TestAuthenticateDevMode(t *testing.T) {
	cfg := authConfig("")
	cfg.JWT.Disabled = true
	v, err := NewJWTValidator(cfg, nil)
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	id := uuid.New()
	player, err := v.Authenticate(httptest.NewRequest("GET", "/ws?player="+id.String()+"&name=bob", nil))
	if err != nil || player.ID() != id || player.Username != "bob" {
		t.Fatalf("unexpected dev player %+v, %v", player, err)
	}
	if _, err := v.Authenticate(httptest.NewRequest("GET", "/ws?player=nope", nil)); err == nil {
		t.Fatalf("expected invalid id rejected")
	}
}
