package authtools

import "context"

// UserStore is a persistence adapter for the user hooks. Lookups return
// (nil, nil) when no user matches.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	StoreUser(ctx context.Context, user User) error
}

// TokenStore is a persistence adapter for the refresh token hooks.
type TokenStore interface {
	CheckTokenExists(ctx context.Context, refreshToken string) (bool, error)
	StoreToken(ctx context.Context, refreshToken string) error
	DeleteToken(ctx context.Context, refreshToken string) error
}
