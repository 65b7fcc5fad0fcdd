package service

// CredentialVerifier hashes and checks passwords. The hash format is opaque
// to the service; cryptox.PasswordHasher is the production implementation.
type CredentialVerifier interface {
	Hash(password string) (string, error)

	// Verify returns nil only when password matches hash.
	Verify(password, hash string) error
}
