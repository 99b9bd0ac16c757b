package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/scope"
	"github.com/jonathan/talent-lifecycle/internal/server/middleware"
	"github.com/jonathan/talent-lifecycle/internal/types"
)

// Claims carries the acting principal. Category is the legacy authority label
// used to infer JurisdictionLevel for tokens issued before the level claim existed.
type Claims struct {
	UserID            uuid.UUID  `json:"user_id"`
	Role              types.Role `json:"role"`
	OrgID             uuid.UUID  `json:"org_id"`
	JurisdictionLevel string     `json:"jurisdiction_level,omitempty"`
	JurisdictionKey   string     `json:"jurisdiction_key,omitempty"`
	Category          string     `json:"category,omitempty"`
	jwt.RegisteredClaims
}

// GetActor converts the claims into an Actor.
// This implements the middleware.ActorGetter interface.
func (c *Claims) GetActor() (types.Actor, error) {
	if c.UserID == uuid.Nil {
		return types.Actor{}, fmt.Errorf("token has no user id")
	}
	if !c.Role.Valid() {
		return types.Actor{}, fmt.Errorf("unknown role: %q", c.Role)
	}
	level, err := types.ParseJurisdictionLevel(c.JurisdictionLevel)
	if err != nil {
		return types.Actor{}, err
	}
	if level == "" && c.Role == types.RoleGovernment {
		level = scope.InferLevel(c.Category)
	}
	return types.Actor{
		ID:                c.UserID,
		Role:              c.Role,
		OrgID:             c.OrgID,
		JurisdictionLevel: level,
		JurisdictionKey:   c.JurisdictionKey,
	}, nil
}

// AsTokenValidator returns a TokenValidator adapter for this JWTService.
// This allows the JWTService to be used with middleware without creating import cycles.
func (s *JWTService) AsTokenValidator() middleware.TokenValidator {
	return &jwtServiceValidator{service: s}
}

// jwtServiceValidator adapts JWTService to middleware.TokenValidator interface.
type jwtServiceValidator struct {
	service *JWTService
}

func (v *jwtServiceValidator) ValidateToken(tokenString string) (middleware.ActorGetter, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// JWTService provides JWT token generation and validation functionality.
type JWTService struct {
	config *config.JWTConfig
}

// NewJWTService creates a new JWT service with the given configuration.
func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{
		config: cfg,
	}
}

// GenerateToken generates a JWT token for the given actor.
func (s *JWTService) GenerateToken(actor types.Actor) (string, error) {
	now := time.Now()
	expiresAt := now.Add(time.Duration(s.config.ExpirationHours) * time.Hour)

	claims := &Claims{
		UserID:            actor.ID,
		Role:              actor.Role,
		OrgID:             actor.OrgID,
		JurisdictionLevel: string(actor.JurisdictionLevel),
		JurisdictionKey:   actor.JurisdictionKey,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token string is empty")
	}

	var opts []jwt.ParserOption
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, opts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrSignatureInvalid), errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("invalid token signature: %w", err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("token expired: %w", err)
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("malformed token: %w", err)
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	return claims, nil
}
