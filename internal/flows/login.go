package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authtools/jwt"
	"github.com/MrEthical07/authtools/password"
)

// LoginInput is the login request body. Login matches either an email or a
// username.
type LoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RunLogin authenticates a user and mints a refresh and access token pair.
// The refresh token is persisted only after the intercept hook approves.
func RunLogin(ctx context.Context, in LoginInput, deps Deps, onIntercept InterceptFunc) Result {
	if in.Login == "" || in.Password == "" {
		return fail(FailureMissingInput)
	}

	user, err := FindByLogin(ctx, in.Login, deps)
	if err != nil {
		return Result{Failure: FailureServer, Err: err}
	}
	if user == nil {
		return fail(FailureUserNotFound)
	}

	matches, err := deps.CheckPassword(ctx, in.Password, user.HashedPassword)
	if errors.Is(err, password.ErrPasswordTooLong) {
		// No stored hash can match an input the hasher refuses.
		return Result{Failure: FailurePasswordMismatch, User: user}
	}
	if err != nil {
		return serverFailure("checkPassword", err)
	}
	if !matches {
		return Result{Failure: FailurePasswordMismatch, User: user}
	}

	payload := jwt.Payload{SubjectID: user.ID}

	refreshToken, err := deps.IssueRefresh(payload)
	if err != nil {
		return serverFailure("issue refresh token", err)
	}
	accessToken, err := deps.IssueAccess(payload)
	if err != nil {
		return serverFailure("issue access token", err)
	}

	event := InterceptEvent{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Payload:      payload,
	}
	if res, stop := intercept(ctx, onIntercept, event); stop {
		res.User = user
		return res
	}

	if err := deps.StoreToken(ctx, refreshToken); err != nil {
		return serverFailure("storeToken", err)
	}

	return Result{
		User:         user,
		Payload:      payload,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}
