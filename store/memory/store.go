package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/oops"

	"github.com/MrEthical07/authtools"
)

var (
	// ErrDuplicateEmail is returned by StoreUser when the email is taken.
	ErrDuplicateEmail = errors.New("memory: email already stored")
	// ErrDuplicateUsername is returned by StoreUser when the username is taken.
	ErrDuplicateUsername = errors.New("memory: username already stored")
	// ErrDuplicateID is returned by StoreUser when the id is taken.
	ErrDuplicateID = errors.New("memory: id already stored")
)

// Users is a map-backed authtools.UserStore. Email and username are
// unique, closing the window between the register lookup and the write.
type Users struct {
	mu         sync.RWMutex
	byID       map[string]authtools.User
	byEmail    map[string]string
	byUsername map[string]string
}

func NewUsers() *Users {
	return &Users{
		byID:       map[string]authtools.User{},
		byEmail:    map[string]string{},
		byUsername: map[string]string{},
	}
}

func (s *Users) GetUserByEmail(_ context.Context, email string) (*authtools.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byEmail, email), nil
}

func (s *Users) GetUserByUsername(_ context.Context, username string) (*authtools.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookup(s.byUsername, username), nil
}

func (s *Users) lookup(index map[string]string, key string) *authtools.User {
	id, ok := index[key]
	if !ok {
		return nil
	}
	u := s.byID[id]
	return &u
}

func (s *Users) StoreUser(_ context.Context, user authtools.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errb := oops.Code("AUTHTOOLS_USER_CONFLICT").With("id", user.ID)
	switch {
	case s.has(s.byEmail, user.Email):
		return errb.Wrap(ErrDuplicateEmail)
	case s.has(s.byUsername, user.Username):
		return errb.Wrap(ErrDuplicateUsername)
	}
	if _, ok := s.byID[user.ID]; ok {
		return errb.Wrap(ErrDuplicateID)
	}

	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID
	s.byUsername[user.Username] = user.ID
	return nil
}

func (s *Users) has(index map[string]string, key string) bool {
	_, ok := index[key]
	return ok
}

// Len returns the number of stored users.
func (s *Users) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Tokens is a set-backed authtools.TokenStore.
type Tokens struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

func NewTokens() *Tokens {
	return &Tokens{tokens: map[string]struct{}{}}
}

func (s *Tokens) CheckTokenExists(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tokens[token]
	return ok, nil
}

func (s *Tokens) StoreToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = struct{}{}
	return nil
}

func (s *Tokens) DeleteToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// Len returns the number of live tokens.
func (s *Tokens) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

var (
	_ authtools.UserStore  = (*Users)(nil)
	_ authtools.TokenStore = (*Tokens)(nil)
)
