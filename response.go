package authtools

// Code is the stable numeric outcome of a flow. Hosts branch and localise
// on codes; raw fault descriptions never reach a response.
type Code int

const (
	CodeOK                 Code = 0
	CodeAccessTokenMissing Code = 1
	CodeAccessTokenInvalid Code = 2
	CodeServerError        Code = 5

	CodeRegisterSuccess       Code = 10
	CodeRegisterDisabled      Code = 11
	CodeRegisterMissingInput  Code = 12
	CodeRegisterMalformedMail Code = 13
	CodeRegisterWeakPassword  Code = 14
	CodeRegisterEmailTaken    Code = 15
	CodeRegisterUsernameTaken Code = 16
	CodeRegisterLoginTaken    Code = 17
	CodeRegisterIntercepted   Code = 19

	CodeLoginSuccess            Code = 20
	CodeLoginDisabled           Code = 21
	CodeLoginMissingInput       Code = 22
	CodeLoginUserNotFound       Code = 23
	CodeLoginPasswordMismatch   Code = 24
	CodeLoginInvalidCredentials Code = 25
	CodeLoginIntercepted        Code = 29

	CodeLogoutSuccess       Code = 30
	CodeLogoutDisabled      Code = 31
	CodeLogoutMissingInput  Code = 32
	CodeLogoutInvalidToken  Code = 33
	CodeLogoutTokenNotFound Code = 34
	CodeLogoutIntercepted   Code = 39

	CodeRefreshSuccess       Code = 40
	CodeRefreshDisabled      Code = 41
	CodeRefreshMissingInput  Code = 42
	CodeRefreshInvalidToken  Code = 43
	CodeRefreshTokenNotFound Code = 44
	CodeRefreshIntercepted   Code = 49

	CodeCheckSuccess            Code = 50
	CodeCheckDisabled           Code = 51
	CodeCheckMissingInput       Code = 52
	CodeCheckInvalidToken       Code = 53
	CodeCheckTokenNotFound      Code = 54
	CodeCheckInvalidAccessToken Code = 55
	CodeCheckIntercepted        Code = 59
)

// flowCodes holds the codes every flow has. Flow-specific failures are
// mapped in Engine.codeFor.
type flowCodes struct {
	success     Code
	disabled    Code
	missing     Code
	invalid     Code
	notFound    Code
	intercepted Code
}

var codeTable = [flowCount]flowCodes{
	FlowRegister: {success: CodeRegisterSuccess, disabled: CodeRegisterDisabled, missing: CodeRegisterMissingInput, intercepted: CodeRegisterIntercepted},
	FlowLogin:    {success: CodeLoginSuccess, disabled: CodeLoginDisabled, missing: CodeLoginMissingInput, intercepted: CodeLoginIntercepted},
	FlowLogout:   {success: CodeLogoutSuccess, disabled: CodeLogoutDisabled, missing: CodeLogoutMissingInput, invalid: CodeLogoutInvalidToken, notFound: CodeLogoutTokenNotFound, intercepted: CodeLogoutIntercepted},
	FlowRefresh:  {success: CodeRefreshSuccess, disabled: CodeRefreshDisabled, missing: CodeRefreshMissingInput, invalid: CodeRefreshInvalidToken, notFound: CodeRefreshTokenNotFound, intercepted: CodeRefreshIntercepted},
	FlowCheck:    {success: CodeCheckSuccess, disabled: CodeCheckDisabled, missing: CodeCheckMissingInput, invalid: CodeCheckInvalidToken, notFound: CodeCheckTokenNotFound, intercepted: CodeCheckIntercepted},
}

// Status is the auth triad of every response.
type Status struct {
	Error         bool `json:"error"`
	Code          Code `json:"code"`
	InterceptCode int  `json:"interceptCode"`
}

// Response is the canonical envelope. Data is nil on every error and on
// flows that answer without a body.
type Response[T any] struct {
	Auth Status `json:"auth"`
	Data *T     `json:"data"`
}

// OK reports whether the response is a success.
func (r Response[T]) OK() bool {
	return !r.Auth.Error
}

// Success builds a success envelope.
func Success[T any](code Code, data *T) Response[T] {
	return Response[T]{Auth: Status{Code: code}, Data: data}
}

// Failure builds a client-error envelope.
func Failure[T any](code Code) Response[T] {
	return Response[T]{Auth: Status{Error: true, Code: code}}
}

// Intercepted builds the envelope of a flow vetoed by its intercept hook.
func Intercepted[T any](code Code, interceptCode int) Response[T] {
	return Response[T]{Auth: Status{Error: true, Code: code, InterceptCode: interceptCode}}
}

// ServerError builds the uniform server-error envelope.
func ServerError[T any]() Response[T] {
	return Failure[T](CodeServerError)
}
