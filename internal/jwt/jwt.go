package jwt

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v4"
)

const (
	jwtIssuer = "MENTORSHIP"

	DefaultExpiry    = 24 * time.Hour
	jwtAudienceAdmin = "admin"
	jwtAlg           = jwt.HS256

	minSecretLen = 32
)

// Manager issues and verifies admin session tokens.
type Manager struct {
	aud      string
	expiry   time.Duration
	builder  *jwt.Builder
	verifier jwt.Verifier
}

// NewJWTManager returns a new manager for jwt tokens. An empty secret is
// replaced by random bytes, which invalidates tokens on every restart.
func NewJWTManager(secret []byte, expiry time.Duration) (*Manager, error) {
	if len(secret) == 0 {
		secret = make([]byte, minSecretLen)
		_, err := rand.Read(secret)
		if err != nil {
			return nil, fmt.Errorf("rand.Read error: %w", err)
		}
	} else if len(secret) < minSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", minSecretLen)
	}

	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	signer, err := jwt.NewSignerHS(jwtAlg, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewSignerHS error: %w", err)
	}

	verifier, err := jwt.NewVerifierHS(jwtAlg, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewVerifierHS error: %w", err)
	}

	return &Manager{
		aud:      jwtAudienceAdmin,
		expiry:   expiry,
		builder:  jwt.NewBuilder(signer),
		verifier: verifier,
	}, nil
}

// GenerateToken generates a new jwt token for the admin with the specified id.
func (m *Manager) GenerateToken(adminID string) (string, error) {
	now := time.Now()
	claims := &jwt.RegisteredClaims{
		ID:        adminID,
		Audience:  jwt.Audience{m.aud},
		Issuer:    jwtIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
	}

	token, err := m.builder.Build(claims)
	if err != nil {
		return "", fmt.Errorf("m.builder.Build error: %w", err)
	}

	return token.String(), nil
}

// IsValidToken checks that the provided token is valid and returns the admin
// id it was issued for.
func (m *Manager) IsValidToken(jwtToken string) (string, bool) {
	jwtClaims := new(jwt.RegisteredClaims)
	err := jwt.ParseClaims([]byte(jwtToken), m.verifier, jwtClaims)
	if err != nil || !(jwtClaims.IsIssuer(jwtIssuer) && jwtClaims.IsValidAt(time.Now())) || !jwtClaims.IsForAudience(m.aud) {
		return "", false
	}

	return jwtClaims.ID, true
}
