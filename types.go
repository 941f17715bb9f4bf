package authtools

import (
	"encoding"
	"fmt"

	"github.com/MrEthical07/authtools/internal/flows"
	"github.com/MrEthical07/authtools/jwt"
)

// User is the identity record the host persists. Only ID is embedded in
// tokens; Email and Username may change without invalidating them.
type User = flows.User

// TokenPayload is the identity carried by access and refresh tokens.
type TokenPayload = jwt.Payload

// Request bodies, one per flow. Logout and refresh share a shape.
type (
	RegisterRequest = flows.RegisterInput
	LoginRequest    = flows.LoginInput
	LogoutRequest   = flows.RefreshInput
	RefreshRequest  = flows.RefreshInput
	CheckRequest    = flows.CheckInput
)

// RegisterData is returned by a successful register. It never carries the
// hashed password.
type RegisterData struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// LoginData is returned by a successful login.
type LoginData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshData is returned by a successful refresh.
type RefreshData struct {
	AccessToken string `json:"accessToken"`
}

// NoData is the data type of flows that answer without a body.
type NoData struct{}

// AccessValidation is the outcome of ValidateAccessToken. Code is
// CodeOK, CodeAccessTokenMissing or CodeAccessTokenInvalid.
type AccessValidation struct {
	Valid   bool
	Code    Code
	Payload *TokenPayload
}

// Flow names one of the five request flows.
type Flow int

const (
	FlowRegister Flow = iota
	FlowLogin
	FlowLogout
	FlowRefresh
	FlowCheck
	flowCount
)

// Flows lists every flow in declaration order.
var Flows = [flowCount]Flow{FlowRegister, FlowLogin, FlowLogout, FlowRefresh, FlowCheck}

var flowNames = [flowCount]string{"register", "login", "logout", "refresh", "check"}

func (f Flow) String() string {
	if f < 0 || f >= flowCount {
		return fmt.Sprintf("flow(%d)", int(f))
	}
	return flowNames[f]
}

// RouteState is the exposure mode of a flow. The zero value resolves to
// RouteActive.
type RouteState string

const (
	RouteActive   RouteState = "active"
	RouteDisabled RouteState = "disabled"
	RouteRemoved  RouteState = "removed"
)

var _ encoding.TextUnmarshaler = (*RouteState)(nil)

// UnmarshalText rejects unknown states so configuration files fail early.
func (s *RouteState) UnmarshalText(text []byte) error {
	state := RouteState(text)
	switch state {
	case "", RouteActive, RouteDisabled, RouteRemoved:
		*s = state
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRouteState, string(text))
	}
}

// RouteTable holds one RouteState per flow.
type RouteTable struct {
	Register RouteState `koanf:"register" yaml:"register"`
	Login    RouteState `koanf:"login" yaml:"login"`
	Logout   RouteState `koanf:"logout" yaml:"logout"`
	Refresh  RouteState `koanf:"refresh" yaml:"refresh"`
	Check    RouteState `koanf:"check" yaml:"check"`
}

// State returns the state configured for flow.
func (t RouteTable) State(flow Flow) RouteState {
	switch flow {
	case FlowRegister:
		return t.Register
	case FlowLogin:
		return t.Login
	case FlowLogout:
		return t.Logout
	case FlowRefresh:
		return t.Refresh
	case FlowCheck:
		return t.Check
	default:
		return RouteRemoved
	}
}

func (t *RouteTable) slot(flow Flow) *RouteState {
	switch flow {
	case FlowRegister:
		return &t.Register
	case FlowLogin:
		return &t.Login
	case FlowLogout:
		return &t.Logout
	case FlowRefresh:
		return &t.Refresh
	case FlowCheck:
		return &t.Check
	default:
		return nil
	}
}

// IDFormat selects the default user id generator.
type IDFormat string

const (
	IDFormatUUID IDFormat = "uuid"
	IDFormatULID IDFormat = "ulid"
)
