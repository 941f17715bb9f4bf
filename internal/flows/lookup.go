package flows

import (
	"context"
	"fmt"
)

// FindByLogin resolves login against both the email and the username
// namespaces. The email lookup runs first and its error short-circuits the
// username lookup. A match by email wins over a match by username.
func FindByLogin(ctx context.Context, login string, deps Deps) (*User, error) {
	byEmail, err := deps.GetUserByEmail(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("getUserByEmail: %w", err)
	}

	byUsername, err := deps.GetUserByUsername(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("getUserByUsername: %w", err)
	}

	if byEmail != nil {
		return byEmail, nil
	}
	return byUsername, nil
}
