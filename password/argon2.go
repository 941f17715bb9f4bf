package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

var errInvalidPHC = errors.New("password: invalid argon2id hash")

// Config tunes Argon2id. Memory is in KiB.
type Config struct {
	Memory           uint32 `koanf:"memory" yaml:"memory"`
	Time             uint32 `koanf:"time" yaml:"time"`
	Parallelism      uint8  `koanf:"parallelism" yaml:"parallelism"`
	SaltLength       uint32 `koanf:"salt_length" yaml:"salt_length"`
	KeyLength        uint32 `koanf:"key_length" yaml:"key_length"`
	MaxPasswordBytes int    `koanf:"max_password_bytes" yaml:"max_password_bytes"`
}

// DefaultConfig returns the Argon2id parameters used when none are supplied.
func DefaultConfig() Config {
	return Config{
		Memory:           64 * 1024,
		Time:             3,
		Parallelism:      2,
		SaltLength:       16,
		KeyLength:        32,
		MaxPasswordBytes: DefaultMaxPasswordBytes,
	}
}

// Argon2 hashes passwords with Argon2id.
type Argon2 struct {
	config Config
}

// NewArgon2 validates cfg and returns a hasher bound to it.
func NewArgon2(cfg Config) (*Argon2, error) {
	if cfg.MaxPasswordBytes == 0 {
		cfg.MaxPasswordBytes = DefaultMaxPasswordBytes
	}

	switch {
	case cfg.Memory < minMemoryKB:
		return nil, fmt.Errorf("password: argon2 memory must be >= %d KiB", minMemoryKB)
	case cfg.Time < minTimeCost:
		return nil, fmt.Errorf("password: argon2 time must be >= %d", minTimeCost)
	case cfg.Parallelism < minParallelism:
		return nil, fmt.Errorf("password: argon2 parallelism must be >= %d", minParallelism)
	case cfg.SaltLength < minSaltLength:
		return nil, fmt.Errorf("password: argon2 salt length must be >= %d", minSaltLength)
	case cfg.KeyLength < minKeyLength:
		return nil, fmt.Errorf("password: argon2 key length must be >= %d", minKeyLength)
	case cfg.MaxPasswordBytes < 0:
		return nil, errors.New("password: max password bytes must not be negative")
	}

	return &Argon2{config: cfg}, nil
}

// Hash derives a PHC-encoded Argon2id hash with a fresh random salt. The
// password bytes are used as given, without Unicode normalisation.
func (a *Argon2) Hash(password string) (string, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	salt := make([]byte, a.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, a.config.Time, a.config.Memory, a.config.Parallelism, a.config.KeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		a.config.Memory,
		a.config.Time,
		a.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches encodedHash.
func (a *Argon2) Verify(password, encodedHash string) (bool, error) {
	if len(password) > a.config.MaxPasswordBytes {
		return false, ErrPasswordTooLong
	}
	return verifyArgon2(password, encodedHash)
}

type phc struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func verifyArgon2(password, encodedHash string) (bool, error) {
	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.parallelism, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(computed, h.key) == 1, nil
}

func parsePHC(encodedHash string) (*phc, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return nil, errInvalidPHC
	}

	version, found := strings.CutPrefix(parts[2], "v=")
	if !found || version != strconv.Itoa(argon2.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", errInvalidPHC, parts[2])
	}

	h := &phc{}
	if err := h.parseParams(parts[3]); err != nil {
		return nil, err
	}

	salt, err := decodeSegment(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return nil, fmt.Errorf("%w: bad salt", errInvalidPHC)
	}
	key, err := decodeSegment(parts[5])
	if err != nil || len(key) == 0 {
		return nil, fmt.Errorf("%w: bad key", errInvalidPHC)
	}
	h.salt, h.key = salt, key

	return h, nil
}

func (h *phc) parseParams(segment string) error {
	seen := map[string]bool{}
	for _, pair := range strings.Split(segment, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || seen[name] {
			return fmt.Errorf("%w: bad parameter %q", errInvalidPHC, pair)
		}
		seen[name] = true

		switch name {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || uint32(v) < minMemoryKB {
				return fmt.Errorf("%w: bad memory %q", errInvalidPHC, value)
			}
			h.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || uint32(v) < minTimeCost {
				return fmt.Errorf("%w: bad time %q", errInvalidPHC, value)
			}
			h.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || uint8(v) < minParallelism {
				return fmt.Errorf("%w: bad parallelism %q", errInvalidPHC, value)
			}
			h.parallelism = uint8(v)
		default:
			return fmt.Errorf("%w: unknown parameter %q", errInvalidPHC, name)
		}
	}

	if !seen["m"] || !seen["t"] || !seen["p"] {
		return fmt.Errorf("%w: missing parameters", errInvalidPHC)
	}
	return nil
}

// decodeSegment accepts both padded and unpadded base64.
func decodeSegment(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
