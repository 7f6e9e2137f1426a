package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/pkg/models"
)

// ErrBlacklisted is returned for revoked tokens
var ErrBlacklisted = errors.New("token is blacklisted")

// JWTValidator handles JWT token validation
type JWTValidator struct {
	config    *config.Config
	publicKey *ecdsa.PublicKey
	keyMu     sync.RWMutex
	redis     *redis.Client
}

// Claims represents the JWT claims issued by the login server
type Claims struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Operator bool   `json:"operator"`
	jwt.RegisteredClaims
}

// NewJWTValidator creates a new JWT validator. A nil redis client disables
// the blacklist check.
func NewJWTValidator(cfg *config.Config, redisClient *redis.Client) (*JWTValidator, error) {
	validator := &JWTValidator{
		config: cfg,
		redis:  redisClient,
	}

	if cfg.JWT.Disabled {
		log.Println("WARNING: JWT validation disabled, accepting player ids from the query string")
		return validator, nil
	}

	if err := validator.LoadPublicKey(); err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	log.Println("JWT validator initialized")
	return validator, nil
}

// LoadPublicKey reads the PEM-encoded ECDSA public key from disk
func (v *JWTValidator) LoadPublicKey() error {
	keyData, err := os.ReadFile(v.config.JWT.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("failed to read public key: %w", err)
	}

	key, err := parsePublicKey(keyData)
	if err != nil {
		return err
	}

	v.keyMu.Lock()
	v.publicKey = key
	v.keyMu.Unlock()

	log.Printf("Public key loaded from %s", v.config.JWT.PublicKeyPath)
	return nil
}

func parsePublicKey(keyData []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(keyData)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	pubKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	ecdsaKey, ok := pubKey.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not ECDSA")
	}
	return ecdsaKey, nil
}

// ValidateToken validates a JWT token and returns player information
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*models.Player, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		v.keyMu.RLock()
		defer v.keyMu.RUnlock()
		return v.publicKey, nil
	}, jwt.WithIssuer(v.config.JWT.Issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	playerID, err := uuid.Parse(claims.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("invalid player id: %w", err)
	}

	if err := v.checkBlacklist(ctx, playerID); err != nil {
		return nil, err
	}

	player := v.newPlayer(playerID, claims.Username)
	player.Operator = claims.Operator
	return player, nil
}

// Authenticate resolves the player of an upgrade request
func (v *JWTValidator) Authenticate(r *http.Request) (*models.Player, error) {
	if v.config.JWT.Disabled {
		q := r.URL.Query()
		id, err := uuid.Parse(q.Get("player"))
		if err != nil {
			return nil, fmt.Errorf("invalid player id: %w", err)
		}
		name := q.Get("name")
		if name == "" {
			name = id.String()[:8]
		}
		return v.newPlayer(id, name), nil
	}

	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		return nil, fmt.Errorf("missing authentication token")
	}
	return v.ValidateToken(r.Context(), tokenString)
}

func (v *JWTValidator) checkBlacklist(ctx context.Context, playerID uuid.UUID) error {
	if v.redis == nil {
		return nil
	}
	blacklistKey := v.config.Redis.BlacklistPrefix + playerID.String()
	isBlacklisted, err := v.redis.Exists(ctx, blacklistKey).Result()
	if err != nil {
		log.Printf("Warning: Failed to check blacklist: %v", err)
		// Continue anyway - don't fail authentication if Redis is down
		return nil
	}
	if isBlacklisted > 0 {
		return ErrBlacklisted
	}
	return nil
}

func (v *JWTValidator) newPlayer(id uuid.UUID, name string) *models.Player {
	return models.NewPlayer(id, name, v.config.Players.InventorySize, v.config.Players.StackLimit)
}

// extractTokenFromHeader extracts JWT token from WebSocket connection header
func extractTokenFromHeader(r *http.Request) string {
	// Format: "access_token, <token>"
	if protocols := r.Header.Get("Sec-WebSocket-Protocol"); protocols != "" {
		parts := splitAndTrim(protocols, ",")
		if len(parts) == 2 && parts[0] == "access_token" {
			return parts[1]
		}
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token
	}

	// Query parameter (less secure, but supported)
	return r.URL.Query().Get("token")
}

// splitAndTrim splits a string and trims each part
func splitAndTrim(s, sep string) []string {
	var result []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
