package videos

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// ProviderClaim is the fixed provider value the backend expects in every token.
	ProviderClaim = "video-server-provider"
	// TokenTTL is the lifetime of an upload token.
	TokenTTL = 24 * time.Hour
)

// TokenClaims is the claim set carried by upload tokens.
type TokenClaims struct {
	Provider  string `json:"provider"`
	ContentID string `json:"contentId"`
	jwt.RegisteredClaims
}

// TokenSigner mints HS512 tokens binding an upload to a content id.
type TokenSigner struct {
	now func() time.Time
}

// NewTokenSigner returns a signer using the wall clock.
func NewTokenSigner() *TokenSigner {
	return &TokenSigner{now: time.Now}
}

// Sign returns a compact JWT for contentID signed with the UTF-8 bytes of secret.
func (s *TokenSigner) Sign(contentID, secret string) (string, error) {
	if !utf8.ValidString(secret) {
		return "", fmt.Errorf("%w: secret is not valid utf-8", ErrSigning)
	}

	now := time.Now
	if s != nil && s.now != nil {
		now = s.now
	}
	issuedAt := now()

	claims := TokenClaims{
		Provider:  ProviderClaim,
		ContentID: contentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   contentID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return signed, nil
}
