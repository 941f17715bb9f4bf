package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrEmptySecret is returned when a token would be signed or verified with an empty secret.
	ErrEmptySecret = errors.New("jwt: empty signing secret")
	// ErrNegativeTTL is returned for a negative token lifetime.
	ErrNegativeTTL = errors.New("jwt: negative token lifetime")
)

// Payload is the identity embedded in every token. It deliberately holds no
// profile fields so that email or username changes never invalidate issued
// tokens.
type Payload struct {
	SubjectID string `json:"subjectId"`
}

// Claims is the on-the-wire claim set.
type Claims struct {
	jwt.RegisteredClaims
}

// Config binds a secret and lifetime into a Manager. A zero TTL issues
// tokens without an expiry claim.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// Manager issues and verifies tokens for a single secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager validates cfg and returns a Manager bound to it.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.TTL < 0 {
		return nil, ErrNegativeTTL
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	return &Manager{secret: secret, ttl: cfg.TTL, now: time.Now}, nil
}

// Issue signs payload with the manager's secret and lifetime.
func (m *Manager) Issue(payload Payload) (string, error) {
	return issue(payload, m.secret, m.ttl, m.now())
}

// Verify recovers the payload of token. ok is false for any malformed,
// tampered, foreign or expired token.
func (m *Manager) Verify(token string) (Payload, bool) {
	return verify(token, m.secret, m.now)
}

// Issue signs payload with secret. When ttl is positive the token expires
// after ttl; when ttl is zero the token is long-lived.
func Issue(payload Payload, secret []byte, ttl time.Duration) (string, error) {
	if ttl < 0 {
		return "", ErrNegativeTTL
	}
	return issue(payload, secret, ttl, time.Now())
}

// Verify recovers the payload of a token signed with secret.
func Verify(token string, secret []byte) (Payload, bool) {
	return verify(token, secret, time.Now)
}

func issue(payload Payload, secret []byte, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  payload.SubjectID,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(token string, secret []byte, now func() time.Time) (Payload, bool) {
	if token == "" || len(secret) == 0 {
		return Payload{}, false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(now),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return Payload{}, false
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Payload{}, false
	}

	return Payload{SubjectID: claims.Subject}, true
}
