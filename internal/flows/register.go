package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/authtools/password"
)

// RegisterInput is the register request body.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// RunRegister validates, de-duplicates, hashes and stores a new user.
func RunRegister(ctx context.Context, in RegisterInput, deps Deps, onIntercept InterceptFunc) Result {
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return fail(FailureMissingInput)
	}

	if deps.EmailValidation {
		valid, err := deps.ValidateEmail(ctx, in.Email)
		if err != nil {
			return serverFailure("validateEmail", err)
		}
		if !valid {
			return fail(FailureMalformedEmail)
		}
	}

	if deps.PasswordValidation {
		valid, err := deps.ValidatePassword(ctx, in.Password, deps.PasswordDescriptor, deps.PasswordRule)
		if err != nil {
			return serverFailure("validatePassword", err)
		}
		if !valid {
			return fail(FailureWeakPassword)
		}
	}

	// Both values are checked against both namespaces so a new username can
	// never shadow an existing email and vice versa.
	existing, err := FindByLogin(ctx, in.Email, deps)
	if err != nil {
		return Result{Failure: FailureServer, Err: err}
	}
	if existing != nil {
		return fail(FailureEmailTaken)
	}

	existing, err = FindByLogin(ctx, in.Username, deps)
	if err != nil {
		return Result{Failure: FailureServer, Err: err}
	}
	if existing != nil {
		return fail(FailureUsernameTaken)
	}

	hashed, err := deps.HashPassword(ctx, in.Password)
	if errors.Is(err, password.ErrPasswordTooLong) {
		return fail(FailureWeakPassword)
	}
	if err != nil {
		return serverFailure("hashPassword", err)
	}

	id, err := deps.GenerateID(ctx, in.Email, in.Username)
	if err != nil {
		return serverFailure("generateId", err)
	}

	user := User{
		ID:             id,
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hashed,
	}

	if res, stop := intercept(ctx, onIntercept, InterceptEvent{User: &user}); stop {
		return res
	}

	if err := deps.StoreUser(ctx, user); err != nil {
		return serverFailure("storeUser", err)
	}

	return Result{User: &user}
}
