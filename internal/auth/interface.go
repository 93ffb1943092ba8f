package auth

// Claims carries the verified token claims this core cares about: the acting
// user id (subject) and the caller's role for the permission registry.
type Claims struct {
	Subject string
	Role    string
}

// IdentityProvider resolves the acting-user identifier for a request.
// Implementations return the verified claims or an error; callers fall back
// to the system actor when no identity is present.
type IdentityProvider interface {
	// VerifyToken validates a bearer token string and returns the claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*Claims, error)

	// Close releases any resources held by the provider (e.g., HTTP connections for JWKS).
	// Should be called when the provider is no longer needed.
	Close() error
}
