package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
)

const (
	tokenIssuer   = "bookcourier-server"
	tokenAudience = "bookcourier-client"
)

// LocalTokenService mints and verifies PASETO v4.local tokens that stand in
// for identity provider tokens outside production.
type LocalTokenService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
}

// NewLocalTokenService creates a token service from a 32-byte key.
func NewLocalTokenService(key []byte, duration time.Duration) (*LocalTokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &LocalTokenService{
		symmetricKey: symmetricKey,
		duration:     duration,
	}, nil
}

// Issue creates a token for email. The subject is a stable UUID derived
// from the lowercased email so repeated tokens name the same uid.
func (s *LocalTokenService) Issue(email, name string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("email is required")
	}

	now := time.Now()
	token := paseto.NewToken()

	token.SetIssuer(tokenIssuer)
	token.SetSubject(localUID(email))
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetJti(uuid.NewString())

	//nolint:errcheck // Token.Set only errors on invalid types, which we control
	_ = token.Set("email", email)
	if name != "" {
		//nolint:errcheck // as above
		_ = token.Set("name", name)
	}

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify implements Verifier.
func (s *LocalTokenService) Verify(_ context.Context, tokenString string) (*Identity, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, domainerrors.InvalidToken("invalid token", err)
	}

	var claims LocalClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, domainerrors.InvalidToken("invalid token claims", err)
	}
	if claims.Email == "" {
		return nil, domainerrors.InvalidToken("token has no email claim", nil)
	}

	return &Identity{
		Email: claims.Email,
		UID:   claims.Subject,
		Name:  claims.Name,
	}, nil
}

// Duration returns the configured token lifetime.
func (s *LocalTokenService) Duration() time.Duration {
	return s.duration
}

var localNamespace = uuid.MustParse("5b0c1f8e-6f3a-4d8e-9a57-2f1d3c4b5a69")

func localUID(email string) string {
	return uuid.NewSHA1(localNamespace, []byte(strings.ToLower(email))).String()
}
