package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned by Verify for every rejected token:
// bad signature, malformed structure, wrong algorithm or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// TokenTypeAccess marks bearer tokens accepted by the authorization guard.
const TokenTypeAccess = "access"

// Claims defines the claim set carried by access tokens.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited bearer tokens.
type TokenService interface {
	// Issue signs a token for subject that expires after ttl.
	Issue(subject uuid.UUID, ttl time.Duration) (string, error)

	// Verify returns the subject of a valid token, or an error matching ErrInvalidToken.
	Verify(token string) (uuid.UUID, error)

	// AccessTTL returns the configured lifetime of access tokens.
	AccessTTL() time.Duration
}
