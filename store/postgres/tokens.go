package postgres

import (
	"context"
	"crypto/sha256"

	"github.com/samber/oops"

	"github.com/MrEthical07/authtools"
)

const (
	selectTokenExists = `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_hash = $1)`
	insertToken       = `INSERT INTO refresh_tokens (token_hash) VALUES ($1) ON CONFLICT (token_hash) DO NOTHING`
	deleteToken       = `DELETE FROM refresh_tokens WHERE token_hash = $1`
)

// Tokens implements authtools.TokenStore. Only the SHA-256 of each token is
// stored.
type Tokens struct {
	pool poolIface
}

// NewTokens returns a refresh token store over pool.
func NewTokens(pool poolIface) *Tokens {
	return &Tokens{pool: pool}
}

func tokenHash(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func (s *Tokens) CheckTokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, selectTokenExists, tokenHash(token)).Scan(&exists); err != nil {
		return false, oops.Code("TOKEN_QUERY_FAILED").Wrap(err)
	}
	return exists, nil
}

func (s *Tokens) StoreToken(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, insertToken, tokenHash(token)); err != nil {
		return oops.Code("TOKEN_INSERT_FAILED").Wrap(err)
	}
	return nil
}

func (s *Tokens) DeleteToken(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, deleteToken, tokenHash(token)); err != nil {
		return oops.Code("TOKEN_DELETE_FAILED").Wrap(err)
	}
	return nil
}

var _ authtools.TokenStore = (*Tokens)(nil)
