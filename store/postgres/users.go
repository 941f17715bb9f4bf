package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/MrEthical07/authtools"
)

// ErrDuplicateUser is returned by StoreUser when the email, username or id
// is already stored.
var ErrDuplicateUser = errors.New("postgres: user already exists")

const (
	selectUserByEmail = `SELECT id, email, username, hashed_password FROM users WHERE email = $1`
	selectUserByName  = `SELECT id, email, username, hashed_password FROM users WHERE username = $1`
	insertUser        = `INSERT INTO users (id, email, username, hashed_password) VALUES ($1, $2, $3, $4)`
)

// Users implements authtools.UserStore.
type Users struct {
	pool poolIface
}

// NewUsers returns a user store over pool.
func NewUsers(pool poolIface) *Users {
	return &Users{pool: pool}
}

func (s *Users) GetUserByEmail(ctx context.Context, email string) (*authtools.User, error) {
	return s.getUser(ctx, selectUserByEmail, email)
}

func (s *Users) GetUserByUsername(ctx context.Context, username string) (*authtools.User, error) {
	return s.getUser(ctx, selectUserByName, username)
}

func (s *Users) getUser(ctx context.Context, query, arg string) (*authtools.User, error) {
	var u authtools.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").Wrap(err)
	}
	return &u, nil
}

func (s *Users) StoreUser(ctx context.Context, user authtools.User) error {
	_, err := s.pool.Exec(ctx, insertUser, user.ID, user.Email, user.Username, user.HashedPassword)
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("USER_DUPLICATE").
			With("user_id", user.ID).
			With("constraint", pgErr.ConstraintName).
			Wrap(ErrDuplicateUser)
	}
	return oops.Code("USER_INSERT_FAILED").With("user_id", user.ID).Wrap(err)
}

var _ authtools.UserStore = (*Users)(nil)
