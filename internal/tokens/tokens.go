package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docschema/docschema/internal/config"
)

// ErrNotConfigured is returned when workspace credentials are missing.
var ErrNotConfigured = errors.New("integration credentials not configured")

const DefaultIntegrationTTL = 2 * time.Hour

// IntegrationClaims identify a customer to the integration platform.
type IntegrationClaims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateIntegrationToken signs an HS512 token for customerID with the
// workspace secret. The workspace key is the issuer; name falls back to the id.
func GenerateIntegrationToken(cfg *config.Config, customerID, customerName string) (string, error) {
	ic := cfg.Integration
	if ic.WorkspaceKey == "" || ic.WorkspaceSecret == "" {
		return "", ErrNotConfigured
	}
	ttl := ic.TokenTTL
	if ttl <= 0 {
		ttl = DefaultIntegrationTTL
	}
	if customerName == "" {
		customerName = customerID
	}
	now := time.Now()
	claims := IntegrationClaims{
		ID:   customerID,
		Name: customerName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ic.WorkspaceKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return jt.SignedString([]byte(ic.WorkspaceSecret))
}
