package flows

import (
	"context"

	"github.com/MrEthical07/authtools/jwt"
)

// RefreshInput is the request body shared by logout and refresh.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// CheckInput is the check request body.
type CheckInput struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// liveRefreshToken verifies a refresh token signature and confirms the host
// still tracks it.
func liveRefreshToken(ctx context.Context, token string, deps Deps) (jwt.Payload, Result, bool) {
	if token == "" {
		return jwt.Payload{}, fail(FailureMissingInput), false
	}

	payload, valid := deps.VerifyRefresh(token)
	if !valid {
		return jwt.Payload{}, fail(FailureInvalidToken), false
	}

	exists, err := deps.CheckTokenExists(ctx, token)
	if err != nil {
		return jwt.Payload{}, serverFailure("checkTokenExists", err), false
	}
	if !exists {
		return jwt.Payload{}, Result{Failure: FailureTokenNotFound, Payload: payload}, false
	}

	return payload, Result{}, true
}

// RunLogout verifies and deletes a refresh token.
func RunLogout(ctx context.Context, in RefreshInput, deps Deps, onIntercept InterceptFunc) Result {
	payload, res, ok := liveRefreshToken(ctx, in.RefreshToken, deps)
	if !ok {
		return res
	}

	event := InterceptEvent{RefreshToken: in.RefreshToken, Payload: payload}
	if res, stop := intercept(ctx, onIntercept, event); stop {
		res.Payload = payload
		return res
	}

	if err := deps.DeleteToken(ctx, in.RefreshToken); err != nil {
		return serverFailure("deleteToken", err)
	}

	return Result{Payload: payload}
}

// RunRefresh mints a new access token from a live refresh token. The
// refresh token itself is neither rotated nor re-stored.
func RunRefresh(ctx context.Context, in RefreshInput, deps Deps, onIntercept InterceptFunc) Result {
	payload, res, ok := liveRefreshToken(ctx, in.RefreshToken, deps)
	if !ok {
		return res
	}

	event := InterceptEvent{RefreshToken: in.RefreshToken, Payload: payload}
	if res, stop := intercept(ctx, onIntercept, event); stop {
		res.Payload = payload
		return res
	}

	accessToken, err := deps.IssueAccess(payload)
	if err != nil {
		return serverFailure("issue access token", err)
	}

	return Result{Payload: payload, AccessToken: accessToken}
}

// RunCheck probes a token pair without minting or storing anything. The
// refresh token establishes the payload of record; the access token is
// verified independently against its own secret.
func RunCheck(ctx context.Context, in CheckInput, deps Deps, onIntercept InterceptFunc) Result {
	if in.AccessToken == "" || in.RefreshToken == "" {
		return fail(FailureMissingInput)
	}

	payload, res, ok := liveRefreshToken(ctx, in.RefreshToken, deps)
	if !ok {
		return res
	}

	if _, valid := deps.VerifyAccess(in.AccessToken); !valid {
		return Result{Failure: FailureInvalidAccessToken, Payload: payload}
	}

	event := InterceptEvent{
		AccessToken:  in.AccessToken,
		RefreshToken: in.RefreshToken,
		Payload:      payload,
	}
	if res, stop := intercept(ctx, onIntercept, event); stop {
		res.Payload = payload
		return res
	}

	return Result{Payload: payload}
}

// RunValidateAccess verifies a standalone access token.
func RunValidateAccess(token string, deps Deps) Result {
	if token == "" {
		return fail(FailureMissingInput)
	}

	payload, valid := deps.VerifyAccess(token)
	if !valid {
		return fail(FailureInvalidToken)
	}

	return Result{Payload: payload}
}
