package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultPrefix namespaces every key written by a Store.
const DefaultPrefix = "authtools"

// ErrRedisUnavailable wraps every Redis failure returned by a Store.
var ErrRedisUnavailable = errors.New("session: redis unavailable")

// storeTokenScript writes the record only if absent and bumps the counter
// on first write.
const storeTokenScript = `
local created = redis.call("SET", KEYS[1], ARGV[1], "NX")
if created then
  redis.call("INCR", KEYS[2])
  return 1
end
return 0
`

// deleteTokenScript removes the record and decrements the counter without
// letting it drop below zero.
const deleteTokenScript = `
local existed = redis.call("DEL", KEYS[1])
if existed == 1 then
  local count = tonumber(redis.call("GET", KEYS[2]) or "0")
  if count > 1 then
    redis.call("DECR", KEYS[2])
  elseif count == 1 then
    redis.call("DEL", KEYS[2])
  end
end
return existed
`

var (
	storeTokenLua  = redis.NewScript(storeTokenScript)
	deleteTokenLua = redis.NewScript(deleteTokenScript)
)

// Store keeps refresh tokens in Redis. It is safe for concurrent use.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewStore returns a Store writing keys under prefix. An empty prefix uses
// DefaultPrefix.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{redis: client, prefix: prefix, now: time.Now}
}

func (s *Store) tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + ":rt:" + hex.EncodeToString(sum[:])
}

func (s *Store) countKey() string {
	return s.prefix + ":rt-count"
}

// CheckTokenExists reports whether token is live.
func (s *Store) CheckTokenExists(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.tokenKey(token)).Result()
	if err != nil {
		return false, unavailable("exists", err)
	}
	return n == 1, nil
}

// StoreToken marks token live. Storing the same token twice is a no-op.
func (s *Store) StoreToken(ctx context.Context, token string) error {
	value, err := Record{StoredAt: s.now()}.MarshalBinary()
	if err != nil {
		return err
	}
	keys := []string{s.tokenKey(token), s.countKey()}
	if err := storeTokenLua.Run(ctx, s.redis, keys, value).Err(); err != nil {
		return unavailable("store", err)
	}
	return nil
}

// DeleteToken removes token. Deleting an unknown token is not an error.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	keys := []string{s.tokenKey(token), s.countKey()}
	if err := deleteTokenLua.Run(ctx, s.redis, keys).Err(); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

// Lookup returns the record of a live token. ok is false when the token is
// not stored.
func (s *Store) Lookup(ctx context.Context, token string) (rec Record, ok bool, err error) {
	raw, err := s.redis.Get(ctx, s.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, unavailable("get", err)
	}
	if err := rec.UnmarshalBinary(raw); err != nil {
		return Record{}, false, oops.Code("AUTHTOOLS_SESSION_CORRUPT").With("key", s.tokenKey(token)).Wrap(err)
	}
	return rec, true, nil
}

// Count returns the number of live tokens.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.redis.Get(ctx, s.countKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable("count", err)
	}
	return n, nil
}

func unavailable(op string, err error) error {
	return oops.Code("AUTHTOOLS_REDIS_UNAVAILABLE").With("op", op).Wrapf(ErrRedisUnavailable, "%v", err)
}
