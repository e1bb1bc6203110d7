// Package constants holds identifiers shared between configuration and infrastructure.
package constants

// Pub/Sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// MediaCacheControl is sent with every served media blob.
const MediaCacheControl = "public, max-age=3600"

// TokenTypeBearer is the token_type returned by signin.
const TokenTypeBearer = "bearer"
