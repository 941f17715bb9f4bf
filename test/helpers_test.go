//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authtools"
	"github.com/MrEthical07/authtools/password"
	"github.com/MrEthical07/authtools/session"
	"github.com/MrEthical07/authtools/store/memory"
	"github.com/MrEthical07/authtools/transport/httpapi"
)

const (
	accessSecret  = "integration-access-secret"
	refreshSecret = "integration-refresh-secret"
)

// redisMode describes which Redis backend a suite runs against.
type redisMode struct {
	name  string
	setup func(t *testing.T) redis.UniversalClient
}

// redisModes always includes miniredis. A real standalone Redis is added
// when REDIS_ADDR is set and a cluster when REDIS_CLUSTER_ADDRS is set.
func redisModes(t *testing.T) []redisMode {
	t.Helper()
	modes := []redisMode{{
		name: "miniredis",
		setup: func(t *testing.T) redis.UniversalClient {
			t.Helper()
			mr := miniredis.RunT(t)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return rdb
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		modes = append(modes, redisMode{
			name: "standalone:" + addr,
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				rdb := redis.NewClient(&redis.Options{Addr: addr})
				ping(t, rdb)
				rdb.FlushDB(context.Background())
				t.Cleanup(func() { rdb.FlushDB(context.Background()); _ = rdb.Close() })
				return rdb
			},
		})
	}

	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		modes = append(modes, redisMode{
			name: "cluster",
			setup: func(t *testing.T) redis.UniversalClient {
				t.Helper()
				rdb := redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
				ping(t, rdb)
				t.Cleanup(func() { _ = rdb.Close() })
				return rdb
			},
		})
	}

	return modes
}

func ping(t *testing.T, rdb redis.UniversalClient) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("cannot connect to Redis: %v", err)
	}
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

type stack struct {
	engine   *authtools.Engine
	sessions *session.Store
	server   *httptest.Server
}

// newStack wires an engine to a Redis session store and a memory user
// store behind the HTTP router.
func newStack(t *testing.T, rdb redis.UniversalClient, mutate func(*authtools.Options)) stack {
	t.Helper()

	opts := authtools.DefaultOptions()
	opts.AccessTokenSecret = accessSecret
	opts.RefreshTokenSecret = refreshSecret
	opts.Hashing.Algorithm = password.AlgorithmBcrypt
	opts.Hashing.BcryptCost = 4
	if mutate != nil {
		mutate(&opts)
	}

	sessions := session.NewStore(rdb, "it:"+strings.ReplaceAll(t.Name(), "/", ":"))
	engine, err := authtools.New().
		WithOptions(opts).
		WithLogFunc(nil).
		WithUserStore(memory.NewUsers()).
		WithTokenStore(sessions).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	srv := httptest.NewServer(httpapi.NewRouter(engine))
	t.Cleanup(srv.Close)

	return stack{engine: engine, sessions: sessions, server: srv}
}

type envelope struct {
	Auth authtools.Status `json:"auth"`
	Data json.RawMessage  `json:"data"`
}

func (s stack) post(t *testing.T, path string, body any) (int, envelope) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := s.server.Client().Post(s.server.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return res.StatusCode, env
}

func (s stack) registerAndLogin(t *testing.T, name string) authtools.LoginData {
	t.Helper()
	if _, env := s.post(t, "/register", authtools.RegisterRequest{Email: name + "@example.com", Username: name, Password: "Abcdefg1!"}); env.Auth.Error {
		t.Fatalf("register %s: code %d", name, env.Auth.Code)
	}
	_, env := s.post(t, "/login", authtools.LoginRequest{Login: name, Password: "Abcdefg1!"})
	if env.Auth.Error {
		t.Fatalf("login %s: code %d", name, env.Auth.Code)
	}
	var tokens authtools.LoginData
	if err := json.Unmarshal(env.Data, &tokens); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	return tokens
}

func (s stack) count(t *testing.T) int64 {
	t.Helper()
	n, err := s.sessions.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

func wantStatus(t *testing.T, got, want int, env envelope, wantCode authtools.Code) {
	t.Helper()
	if got != want || env.Auth.Code != wantCode {
		t.Fatalf("got status %d code %d, want %d code %d", got, env.Auth.Code, want, wantCode)
	}
}
