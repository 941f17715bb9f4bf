package flows

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/authtools/jwt"
	"github.com/MrEthical07/authtools/policy"
)

var (
	accessSecret  = []byte("flows-access-secret-0123456789ab")
	refreshSecret = []byte("flows-refresh-secret-0123456789a")
	errBackend    = errors.New("backend down")
)

// fakeHost records hook invocations and serves users and tokens from maps.
type fakeHost struct {
	users  []User
	tokens map[string]bool
	calls  []string

	failOn map[string]bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{tokens: map[string]bool{}, failOn: map[string]bool{}}
}

func (h *fakeHost) record(name string) error {
	h.calls = append(h.calls, name)
	if h.failOn[name] {
		return errBackend
	}
	return nil
}

func (h *fakeHost) deps() Deps {
	rule := policy.MustParseRule(policy.DefaultDescriptor)
	return Deps{
		EmailValidation:    true,
		PasswordValidation: true,
		PasswordDescriptor: policy.DefaultDescriptor,
		PasswordRule:       rule,
		GetUserByEmail: func(_ context.Context, email string) (*User, error) {
			if err := h.record("getUserByEmail"); err != nil {
				return nil, err
			}
			for i := range h.users {
				if h.users[i].Email == email {
					u := h.users[i]
					return &u, nil
				}
			}
			return nil, nil
		},
		GetUserByUsername: func(_ context.Context, username string) (*User, error) {
			if err := h.record("getUserByUsername"); err != nil {
				return nil, err
			}
			for i := range h.users {
				if h.users[i].Username == username {
					u := h.users[i]
					return &u, nil
				}
			}
			return nil, nil
		},
		StoreUser: func(_ context.Context, user User) error {
			if err := h.record("storeUser"); err != nil {
				return err
			}
			h.users = append(h.users, user)
			return nil
		},
		CheckTokenExists: func(_ context.Context, token string) (bool, error) {
			if err := h.record("checkTokenExists"); err != nil {
				return false, err
			}
			return h.tokens[token], nil
		},
		StoreToken: func(_ context.Context, token string) error {
			if err := h.record("storeToken"); err != nil {
				return err
			}
			h.tokens[token] = true
			return nil
		},
		DeleteToken: func(_ context.Context, token string) error {
			if err := h.record("deleteToken"); err != nil {
				return err
			}
			delete(h.tokens, token)
			return nil
		},
		ValidateEmail: func(_ context.Context, email string) (bool, error) {
			if err := h.record("validateEmail"); err != nil {
				return false, err
			}
			return policy.ValidateEmail(email), nil
		},
		ValidatePassword: func(_ context.Context, password, _ string, rule policy.Rule) (bool, error) {
			if err := h.record("validatePassword"); err != nil {
				return false, err
			}
			return policy.ValidatePassword(password, rule), nil
		},
		HashPassword: func(_ context.Context, password string) (string, error) {
			if err := h.record("hashPassword"); err != nil {
				return "", err
			}
			return "hashed:" + password, nil
		},
		GenerateID: func(_ context.Context, _, username string) (string, error) {
			if err := h.record("generateId"); err != nil {
				return "", err
			}
			return "id-" + username, nil
		},
		CheckPassword: func(_ context.Context, password, hashed string) (bool, error) {
			if err := h.record("checkPassword"); err != nil {
				return false, err
			}
			return strings.TrimPrefix(hashed, "hashed:") == password, nil
		},
		IssueAccess: func(p jwt.Payload) (string, error) {
			return jwt.Issue(p, accessSecret, 15*time.Minute)
		},
		IssueRefresh: func(p jwt.Payload) (string, error) {
			return jwt.Issue(p, refreshSecret, 0)
		},
		VerifyAccess: func(token string) (jwt.Payload, bool) {
			return jwt.Verify(token, accessSecret)
		},
		VerifyRefresh: func(token string) (jwt.Payload, bool) {
			return jwt.Verify(token, refreshSecret)
		},
	}
}

func (h *fakeHost) resetCalls() {
	h.calls = nil
}

type interceptRecorder struct {
	decision Decision
	events   []InterceptEvent
}

func (r *interceptRecorder) fn(_ context.Context, ev InterceptEvent) Decision {
	r.events = append(r.events, ev)
	return r.decision
}
