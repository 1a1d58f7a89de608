package auth

import (
	"time"
)

// LocalClaims are the claims stored in a local development token.
// They are encrypted in v4.local tokens, so they're not readable without the key.
type LocalClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
