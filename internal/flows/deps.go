package flows

import (
	"context"

	"github.com/MrEthical07/authtools/jwt"
	"github.com/MrEthical07/authtools/policy"
)

// Deps is built once by the root engine and shared by every flow run. Every
// function field must be non-nil; the engine pre-fills unset hooks.
type Deps struct {
	EmailValidation    bool
	PasswordValidation bool
	PasswordDescriptor string
	PasswordRule       policy.Rule

	GetUserByEmail    func(ctx context.Context, email string) (*User, error)
	GetUserByUsername func(ctx context.Context, username string) (*User, error)
	StoreUser         func(ctx context.Context, user User) error
	CheckTokenExists  func(ctx context.Context, refreshToken string) (bool, error)
	StoreToken        func(ctx context.Context, refreshToken string) error
	DeleteToken       func(ctx context.Context, refreshToken string) error

	ValidateEmail    func(ctx context.Context, email string) (bool, error)
	ValidatePassword func(ctx context.Context, password, descriptor string, rule policy.Rule) (bool, error)
	HashPassword     func(ctx context.Context, password string) (string, error)
	GenerateID       func(ctx context.Context, email, username string) (string, error)
	CheckPassword    func(ctx context.Context, password, hashedPassword string) (bool, error)

	IssueAccess   func(jwt.Payload) (string, error)
	IssueRefresh  func(jwt.Payload) (string, error)
	VerifyAccess  func(string) (jwt.Payload, bool)
	VerifyRefresh func(string) (jwt.Payload, bool)
}
