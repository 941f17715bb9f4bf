package authtools

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/MrEthical07/authtools/password"
)

const (
	testAccessSecret  = "root-access-secret-0123456789abcdef"
	testRefreshSecret = "root-refresh-secret-0123456789abcde"
)

var errStoreDown = errors.New("store down")

// testHost is a map-backed host used through the use hooks.
type testHost struct {
	mu     sync.Mutex
	users  map[string]User
	tokens map[string]struct{}
	fail   map[string]bool
}

func newTestHost() *testHost {
	return &testHost{
		users:  map[string]User{},
		tokens: map[string]struct{}{},
		fail:   map[string]bool{},
	}
}

func (h *testHost) failing(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fail[name]
}

func (h *testHost) GetUserByEmail(_ context.Context, email string) (*User, error) {
	if h.failing("getUserByEmail") {
		return nil, errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range h.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (h *testHost) GetUserByUsername(_ context.Context, username string) (*User, error) {
	if h.failing("getUserByUsername") {
		return nil, errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, u := range h.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (h *testHost) StoreUser(_ context.Context, user User) error {
	if h.failing("storeUser") {
		return errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.users[user.ID] = user
	return nil
}

func (h *testHost) CheckTokenExists(_ context.Context, token string) (bool, error) {
	if h.failing("checkTokenExists") {
		return false, errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.tokens[token]
	return ok, nil
}

func (h *testHost) StoreToken(_ context.Context, token string) error {
	if h.failing("storeToken") {
		return errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens[token] = struct{}{}
	return nil
}

func (h *testHost) DeleteToken(_ context.Context, token string) error {
	if h.failing("deleteToken") {
		return errStoreDown
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tokens, token)
	return nil
}

func (h *testHost) tokenCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.tokens)
}

func (h *testHost) userCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.users)
}

type logLine struct {
	level LogLevel
	msg   string
}

type logRecorder struct {
	mu    sync.Mutex
	lines []logLine
}

func (r *logRecorder) sink(level LogLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, logLine{level: level, msg: msg})
}

func (r *logRecorder) contains(level LogLevel, substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.lines {
		if l.level == level && strings.Contains(l.msg, substr) {
			return true
		}
	}
	return false
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.AccessTokenSecret = testAccessSecret
	opts.RefreshTokenSecret = testRefreshSecret
	opts.Hashing.Argon2 = password.Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
	return opts
}

type engineFixture struct {
	engine *Engine
	host   *testHost
	logs   *logRecorder
}

func newTestEngine(t *testing.T, mutate func(*Options), configure func(*Builder)) engineFixture {
	t.Helper()

	opts := testOptions()
	if mutate != nil {
		mutate(&opts)
	}

	host := newTestHost()
	logs := &logRecorder{}
	b := New().
		WithOptions(opts).
		WithLogFunc(logs.sink).
		WithUserStore(host).
		WithTokenStore(host)
	if configure != nil {
		configure(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engineFixture{engine: engine, host: host, logs: logs}
}

var alice = RegisterRequest{Email: "a@b.com", Username: "alice", Password: "Abcdefg1!"}

func mustRegister(t *testing.T, e *Engine, req RegisterRequest) RegisterData {
	t.Helper()
	resp := e.Register(context.Background(), req)
	if !resp.OK() || resp.Data == nil {
		t.Fatalf("register %q: %+v", req.Username, resp.Auth)
	}
	return *resp.Data
}

func mustLogin(t *testing.T, e *Engine, login, pw string) LoginData {
	t.Helper()
	resp := e.Login(context.Background(), LoginRequest{Login: login, Password: pw})
	if !resp.OK() || resp.Data == nil {
		t.Fatalf("login %q: %+v", login, resp.Auth)
	}
	return *resp.Data
}

func expectCode[T any](t *testing.T, resp Response[T], want Code) {
	t.Helper()
	if resp.Auth.Code != want {
		t.Fatalf("expected code %d, got %d (%+v)", want, resp.Auth.Code, resp.Auth)
	}
	if wantErr := !isSuccessCode(want); resp.Auth.Error != wantErr {
		t.Fatalf("expected error=%v for code %d, got %v", wantErr, want, resp.Auth.Error)
	}
	if resp.Auth.Error && resp.Data != nil {
		t.Fatalf("error response carries data: %+v", resp.Data)
	}
}

func isSuccessCode(c Code) bool {
	for _, codes := range codeTable {
		if codes.success == c {
			return true
		}
	}
	return false
}

// tamperSignature flips the first signature character so the token stays
// well formed but no longer verifies.
func tamperSignature(token string) string {
	i := strings.LastIndexByte(token, '.') + 1
	c := byte('A')
	if token[i] == 'A' {
		c = 'B'
	}
	return token[:i] + string(c) + token[i+1:]
}
