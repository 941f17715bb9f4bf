package password

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxPasswordBytes bounds the input accepted by Hash and Verify.
const DefaultMaxPasswordBytes = 1024

var (
	// ErrPasswordTooLong is returned for inputs above the configured byte limit.
	ErrPasswordTooLong = errors.New("password: input exceeds maximum length")
	// ErrUnsupportedHash is returned by Compare for hashes in an unknown format.
	ErrUnsupportedHash = errors.New("password: unsupported hash format")
	// ErrUnknownAlgorithm is returned by New for an unknown Algorithm.
	ErrUnknownAlgorithm = errors.New("password: unknown algorithm")
)

// Algorithm names a hashing scheme.
type Algorithm string

const (
	AlgorithmArgon2id Algorithm = "argon2id"
	AlgorithmBcrypt   Algorithm = "bcrypt"
)

// Hasher produces and checks password hashes.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Options selects and tunes a Hasher in New.
type Options struct {
	Algorithm  Algorithm
	Argon2     Config
	BcryptCost int
}

// New builds the Hasher named by opts.Algorithm.
func New(opts Options) (Hasher, error) {
	switch opts.Algorithm {
	case AlgorithmArgon2id:
		return NewArgon2(opts.Argon2)
	case AlgorithmBcrypt:
		return NewBcrypt(opts.BcryptCost)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, opts.Algorithm)
	}
}

// Compare checks password against a hash in any supported format. The
// parameters encoded in the hash are used, not the caller's configuration.
func Compare(password, encodedHash string) (bool, error) {
	if len(password) > DefaultMaxPasswordBytes {
		return false, ErrPasswordTooLong
	}

	switch {
	case strings.HasPrefix(encodedHash, "$"+algorithmID+"$"):
		return verifyArgon2(password, encodedHash)
	case isBcryptHash(encodedHash):
		return verifyBcrypt(password, encodedHash)
	default:
		return false, ErrUnsupportedHash
	}
}
