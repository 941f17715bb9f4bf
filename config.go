package authtools

import (
	"bytes"
	"time"

	"github.com/samber/oops"

	"github.com/MrEthical07/authtools/password"
	"github.com/MrEthical07/authtools/policy"
)

// DefaultAccessTokenTTL is the access token lifetime when none is configured.
const DefaultAccessTokenTTL = 900 * time.Second

// Options is the partial configuration supplied by the host. Zero values
// and nil pointers take the defaults documented on each field.
// ResolveConfig turns Options into an immutable Config exactly once.
type Options struct {
	// Required. Must differ from RefreshTokenSecret.
	AccessTokenSecret string `koanf:"access_token_secret" yaml:"access_token_secret"`
	// Required.
	RefreshTokenSecret string `koanf:"refresh_token_secret" yaml:"refresh_token_secret"`

	// Default 900s.
	AccessTokenTTL time.Duration `koanf:"access_token_ttl" yaml:"access_token_ttl"`

	// Default true.
	PasswordValidation *bool `koanf:"password_validation" yaml:"password_validation"`
	// Default policy.DefaultDescriptor ("Y-Y-Y-N-8").
	PasswordRules string `koanf:"password_rules" yaml:"password_rules"`
	// Default true.
	EmailValidation *bool `koanf:"email_validation" yaml:"email_validation"`

	// SensitiveAPI collapses distinguishing client codes (email vs username
	// taken, user missing vs password wrong) into one generic code.
	// Default true.
	SensitiveAPI *bool `koanf:"sensitive_api" yaml:"sensitive_api"`
	// SensitiveLogs applies the same suppression to debug log lines.
	// Default false.
	SensitiveLogs *bool `koanf:"sensitive_logs" yaml:"sensitive_logs"`

	// Unset entries are RouteActive.
	Routes RouteTable `koanf:"routes" yaml:"routes"`

	Hashing  HashingOptions `koanf:"hashing" yaml:"hashing"`
	IDFormat IDFormat       `koanf:"id_format" yaml:"id_format"`
	Metrics  MetricsConfig  `koanf:"metrics" yaml:"metrics"`
	Audit    AuditConfig    `koanf:"audit" yaml:"audit"`
}

// HashingOptions configures the default hashPassword hook.
type HashingOptions struct {
	// Default password.AlgorithmArgon2id.
	Algorithm password.Algorithm `koanf:"algorithm" yaml:"algorithm"`
	// Zero fields take password.DefaultConfig values.
	Argon2 password.Config `koanf:"argon2" yaml:"argon2"`
	// Default 10.
	BcryptCost int `koanf:"bcrypt_cost" yaml:"bcrypt_cost"`
}

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled                 bool `koanf:"enabled" yaml:"enabled"`
	EnableLatencyHistograms bool `koanf:"latency_histograms" yaml:"latency_histograms"`
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `koanf:"enabled" yaml:"enabled"`
	BufferSize int  `koanf:"buffer_size" yaml:"buffer_size"`
	DropIfFull bool `koanf:"drop_if_full" yaml:"drop_if_full"`
}

// Config is the fully resolved, immutable engine configuration.
type Config struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration

	PasswordValidation bool
	PasswordRules      string
	PasswordRule       policy.Rule
	EmailValidation    bool

	SensitiveAPI  bool
	SensitiveLogs bool

	Routes RouteTable

	Hashing  password.Options
	IDFormat IDFormat
	Metrics  MetricsConfig
	Audit    AuditConfig
}

// Bool returns a pointer to v for the tri-state fields of Options.
func Bool(v bool) *bool {
	return &v
}

// DefaultOptions returns the defaults applied by ResolveConfig, without secrets.
func DefaultOptions() Options {
	return Options{
		AccessTokenTTL:     DefaultAccessTokenTTL,
		PasswordValidation: Bool(true),
		PasswordRules:      policy.DefaultDescriptor,
		EmailValidation:    Bool(true),
		SensitiveAPI:       Bool(true),
		SensitiveLogs:      Bool(false),
		Routes: RouteTable{
			Register: RouteActive,
			Login:    RouteActive,
			Logout:   RouteActive,
			Refresh:  RouteActive,
			Check:    RouteActive,
		},
		Hashing: HashingOptions{
			Algorithm:  password.AlgorithmArgon2id,
			Argon2:     password.DefaultConfig(),
			BcryptCost: 10,
		},
		IDFormat: IDFormatUUID,
		Audit: AuditConfig{
			BufferSize: 1024,
			DropIfFull: true,
		},
	}
}

// ResolveConfig merges opts over DefaultOptions and validates the result.
// Every error wraps one of the Err* configuration sentinels.
func ResolveConfig(opts Options) (Config, error) {
	def := DefaultOptions()

	cfg := Config{
		AccessTokenSecret:  []byte(opts.AccessTokenSecret),
		RefreshTokenSecret: []byte(opts.RefreshTokenSecret),
		AccessTokenTTL:     opts.AccessTokenTTL,
		PasswordValidation: boolOr(opts.PasswordValidation, *def.PasswordValidation),
		PasswordRules:      opts.PasswordRules,
		EmailValidation:    boolOr(opts.EmailValidation, *def.EmailValidation),
		SensitiveAPI:       boolOr(opts.SensitiveAPI, *def.SensitiveAPI),
		SensitiveLogs:      boolOr(opts.SensitiveLogs, *def.SensitiveLogs),
		Routes:             opts.Routes,
		IDFormat:           opts.IDFormat,
		Metrics:            opts.Metrics,
		Audit:              opts.Audit,
	}

	errb := oops.Code("AUTHTOOLS_CONFIG_INVALID")

	if len(cfg.AccessTokenSecret) == 0 {
		return Config{}, errb.With("field", "access_token_secret").Wrap(ErrMissingSecret)
	}
	if len(cfg.RefreshTokenSecret) == 0 {
		return Config{}, errb.With("field", "refresh_token_secret").Wrap(ErrMissingSecret)
	}
	if bytes.Equal(cfg.AccessTokenSecret, cfg.RefreshTokenSecret) {
		return Config{}, errb.With("field", "refresh_token_secret").Wrap(ErrSharedSecret)
	}

	if cfg.AccessTokenTTL == 0 {
		cfg.AccessTokenTTL = def.AccessTokenTTL
	}
	if cfg.AccessTokenTTL < time.Second {
		return Config{}, errb.With("field", "access_token_ttl").With("value", cfg.AccessTokenTTL).
			Wrapf(ErrInvalidConfig, "access token ttl must be at least 1s")
	}

	if cfg.PasswordRules == "" {
		cfg.PasswordRules = def.PasswordRules
	}
	rule, err := policy.ParseRule(cfg.PasswordRules)
	if err != nil {
		return Config{}, errb.With("field", "password_rules").With("value", cfg.PasswordRules).
			Wrapf(ErrInvalidPasswordRule, "%v", err)
	}
	cfg.PasswordRule = rule

	for _, flow := range Flows {
		slot := cfg.Routes.slot(flow)
		switch *slot {
		case "":
			*slot = def.Routes.State(flow)
		case RouteActive, RouteDisabled, RouteRemoved:
		default:
			return Config{}, errb.With("field", "routes."+flow.String()).With("value", string(*slot)).
				Wrap(ErrInvalidRouteState)
		}
	}

	hashing, err := resolveHashing(opts.Hashing, def.Hashing)
	if err != nil {
		return Config{}, errb.With("field", "hashing").Wrap(err)
	}
	cfg.Hashing = hashing

	switch cfg.IDFormat {
	case "":
		cfg.IDFormat = def.IDFormat
	case IDFormatUUID, IDFormatULID:
	default:
		return Config{}, errb.With("field", "id_format").With("value", string(cfg.IDFormat)).
			Wrap(ErrInvalidIDFormat)
	}

	if cfg.Audit.BufferSize < 0 {
		return Config{}, errb.With("field", "audit.buffer_size").Wrapf(ErrInvalidConfig, "audit buffer size must not be negative")
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}

	return cfg, nil
}

func resolveHashing(opts, def HashingOptions) (password.Options, error) {
	out := password.Options{
		Algorithm:  opts.Algorithm,
		Argon2:     opts.Argon2,
		BcryptCost: opts.BcryptCost,
	}
	if out.Algorithm == "" {
		out.Algorithm = def.Algorithm
	}
	if out.BcryptCost == 0 {
		out.BcryptCost = def.BcryptCost
	}

	a, d := &out.Argon2, def.Argon2
	if a.Memory == 0 {
		a.Memory = d.Memory
	}
	if a.Time == 0 {
		a.Time = d.Time
	}
	if a.Parallelism == 0 {
		a.Parallelism = d.Parallelism
	}
	if a.SaltLength == 0 {
		a.SaltLength = d.SaltLength
	}
	if a.KeyLength == 0 {
		a.KeyLength = d.KeyLength
	}
	if a.MaxPasswordBytes == 0 {
		a.MaxPasswordBytes = d.MaxPasswordBytes
	}

	switch out.Algorithm {
	case password.AlgorithmArgon2id, password.AlgorithmBcrypt:
		return out, nil
	default:
		return password.Options{}, oops.With("value", string(out.Algorithm)).Wrapf(ErrInvalidConfig, "unknown hash algorithm")
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.AccessTokenSecret = append([]byte(nil), cfg.AccessTokenSecret...)
	out.RefreshTokenSecret = append([]byte(nil), cfg.RefreshTokenSecret...)
	return out
}
