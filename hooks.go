package authtools

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/MrEthical07/authtools/internal/flows"
	"github.com/MrEthical07/authtools/password"
	"github.com/MrEthical07/authtools/policy"
)

// Use hook signatures. A non-nil error is a server error for the calling
// flow; the error text is logged and never reaches the client.
type (
	GetUserByEmailFunc    func(ctx context.Context, email string) (*User, error)
	GetUserByUsernameFunc func(ctx context.Context, username string) (*User, error)
	StoreUserFunc         func(ctx context.Context, user User) error
	CheckTokenExistsFunc  func(ctx context.Context, refreshToken string) (bool, error)
	StoreTokenFunc        func(ctx context.Context, refreshToken string) error
	DeleteTokenFunc       func(ctx context.Context, refreshToken string) error

	ValidateEmailFunc    func(ctx context.Context, email string) (bool, error)
	ValidatePasswordFunc func(ctx context.Context, password, descriptor string, rule policy.Rule) (bool, error)
	HashPasswordFunc     func(ctx context.Context, password string) (string, error)
	GenerateIDFunc       func(ctx context.Context, email, username string) (string, error)
	CheckPasswordFunc    func(ctx context.Context, password, hashedPassword string) (bool, error)
)

// Intercept types. The zero Decision proceeds.
type (
	InterceptFunc  = flows.InterceptFunc
	InterceptEvent = flows.InterceptEvent
	Decision       = flows.Decision
)

// Proceed lets an intercepted flow continue.
func Proceed() Decision { return flows.Proceed() }

// Reject vetoes a flow; code is returned to the client as the intercept code.
func Reject(code int) Decision { return flows.Reject(code) }

// Fail aborts a flow with a server error. err is logged.
func Fail(err error) Decision { return flows.Fail(err) }

// UseEvent names a use hook. It is used in log lines and errors.
type UseEvent int

const (
	UseGetUserByEmail UseEvent = iota
	UseGetUserByUsername
	UseStoreUser
	UseCheckTokenExists
	UseStoreToken
	UseDeleteToken
	UseValidateEmail
	UseValidatePassword
	UseHashPassword
	UseGenerateID
	UseCheckPassword
	useEventCount
)

var useEventNames = [useEventCount]string{
	"getUserByEmail",
	"getUserByUsername",
	"storeUser",
	"checkTokenExists",
	"storeToken",
	"deleteToken",
	"validateEmail",
	"validatePassword",
	"hashPassword",
	"generateId",
	"checkPassword",
}

func (e UseEvent) String() string {
	if e < 0 || e >= useEventCount {
		return fmt.Sprintf("use(%d)", int(e))
	}
	return useEventNames[e]
}

// Required reports whether the flows cannot run without a host registration.
func (e UseEvent) Required() bool {
	return e >= UseGetUserByEmail && e <= UseDeleteToken
}

// requiredHooks holds the persistence hooks. Every slot starts as a closure
// that logs and fails until the host registers a real one.
type requiredHooks struct {
	getUserByEmail    GetUserByEmailFunc
	getUserByUsername GetUserByUsernameFunc
	storeUser         StoreUserFunc
	checkTokenExists  CheckTokenExistsFunc
	storeToken        StoreTokenFunc
	deleteToken       DeleteTokenFunc
}

// optionalHooks holds the policy hooks. Every slot starts as a default
// built from policy, password and the configured id format.
type optionalHooks struct {
	validateEmail    ValidateEmailFunc
	validatePassword ValidatePasswordFunc
	hashPassword     HashPasswordFunc
	generateID       GenerateIDFunc
	checkPassword    CheckPasswordFunc
}

func missingHook(log engineLogger, event UseEvent) error {
	log.error(fmt.Sprintf("authtools: required use hook %s is not registered", event))
	return oops.Code("AUTHTOOLS_HOOK_NOT_REGISTERED").With("hook", event.String()).Wrap(ErrHookNotRegistered)
}

func defaultRequiredHooks(log engineLogger) requiredHooks {
	return requiredHooks{
		getUserByEmail: func(context.Context, string) (*User, error) {
			return nil, missingHook(log, UseGetUserByEmail)
		},
		getUserByUsername: func(context.Context, string) (*User, error) {
			return nil, missingHook(log, UseGetUserByUsername)
		},
		storeUser: func(context.Context, User) error {
			return missingHook(log, UseStoreUser)
		},
		checkTokenExists: func(context.Context, string) (bool, error) {
			return false, missingHook(log, UseCheckTokenExists)
		},
		storeToken: func(context.Context, string) error {
			return missingHook(log, UseStoreToken)
		},
		deleteToken: func(context.Context, string) error {
			return missingHook(log, UseDeleteToken)
		},
	}
}

func defaultOptionalHooks(hasher password.Hasher, format IDFormat) optionalHooks {
	return optionalHooks{
		validateEmail: func(_ context.Context, email string) (bool, error) {
			return policy.ValidateEmail(email), nil
		},
		validatePassword: func(_ context.Context, pw, _ string, rule policy.Rule) (bool, error) {
			return policy.ValidatePassword(pw, rule), nil
		},
		hashPassword: func(_ context.Context, pw string) (string, error) {
			return hasher.Hash(pw)
		},
		generateID: func(context.Context, string, string) (string, error) {
			return newID(format), nil
		},
		checkPassword: func(_ context.Context, pw, hashed string) (bool, error) {
			return password.Compare(pw, hashed)
		},
	}
}

func newID(format IDFormat) string {
	if format == IDFormatULID {
		return ulid.Make().String()
	}
	return uuid.NewString()
}
