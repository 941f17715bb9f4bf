package authtools

import (
	"log/slog"

	"github.com/samber/oops"

	"github.com/MrEthical07/authtools/internal/flows"
	"github.com/MrEthical07/authtools/jwt"
	"github.com/MrEthical07/authtools/password"
)

// Builder collects options and hooks before traffic starts. It is not safe
// for concurrent use and builds exactly one Engine. Registering a hook twice
// keeps the last registration.
type Builder struct {
	opts Options
	logf LogFunc

	required   requiredHooks
	optional   optionalHooks
	intercepts [flowCount]InterceptFunc

	auditSink AuditSink

	err   error
	built bool
}

// New returns a Builder with DefaultOptions and an slog-backed logger.
func New() *Builder {
	return &Builder{
		opts: DefaultOptions(),
		logf: SlogSink(nil),
	}
}

// WithOptions replaces the options. Zero fields still take defaults at Build.
func (b *Builder) WithOptions(opts Options) *Builder {
	b.opts = opts
	return b
}

// WithLogger routes engine log lines to logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logf = SlogSink(logger)
	return b
}

// WithLogFunc routes engine log lines to fn. A nil fn silences the engine.
func (b *Builder) WithLogFunc(fn LogFunc) *Builder {
	b.logf = fn
	return b
}

// WithAuditSink sets the destination of audit events. It has no effect
// unless Options.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithUserStore registers getUserByEmail, getUserByUsername and storeUser
// from store.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	if store == nil {
		return b
	}
	b.required.getUserByEmail = store.GetUserByEmail
	b.required.getUserByUsername = store.GetUserByUsername
	b.required.storeUser = store.StoreUser
	return b
}

// WithTokenStore registers checkTokenExists, storeToken and deleteToken
// from store.
func (b *Builder) WithTokenStore(store TokenStore) *Builder {
	if store == nil {
		return b
	}
	b.required.checkTokenExists = store.CheckTokenExists
	b.required.storeToken = store.StoreToken
	b.required.deleteToken = store.DeleteToken
	return b
}

// UseGetUserByEmail registers the getUserByEmail hook. It returns a nil
// user when no account has the email.
func (b *Builder) UseGetUserByEmail(fn GetUserByEmailFunc) *Builder {
	b.required.getUserByEmail = fn
	return b
}

// UseGetUserByUsername registers the getUserByUsername hook. It returns a
// nil user when no account has the username.
func (b *Builder) UseGetUserByUsername(fn GetUserByUsernameFunc) *Builder {
	b.required.getUserByUsername = fn
	return b
}

// UseStoreUser registers the storeUser hook, called once per successful
// registration after the intercept hook approves.
func (b *Builder) UseStoreUser(fn StoreUserFunc) *Builder {
	b.required.storeUser = fn
	return b
}

// UseCheckTokenExists registers the checkTokenExists hook used by logout,
// refresh and check.
func (b *Builder) UseCheckTokenExists(fn CheckTokenExistsFunc) *Builder {
	b.required.checkTokenExists = fn
	return b
}

// UseStoreToken registers the storeToken hook that persists a refresh
// token after login.
func (b *Builder) UseStoreToken(fn StoreTokenFunc) *Builder {
	b.required.storeToken = fn
	return b
}

// UseDeleteToken registers the deleteToken hook called by logout.
func (b *Builder) UseDeleteToken(fn DeleteTokenFunc) *Builder {
	b.required.deleteToken = fn
	return b
}

// UseValidateEmail overrides the default policy.ValidateEmail check.
func (b *Builder) UseValidateEmail(fn ValidateEmailFunc) *Builder {
	b.optional.validateEmail = fn
	return b
}

// UseValidatePassword overrides the default policy.ValidatePassword check.
// The hook receives the raw descriptor and its parsed rule.
func (b *Builder) UseValidatePassword(fn ValidatePasswordFunc) *Builder {
	b.optional.validatePassword = fn
	return b
}

// UseHashPassword overrides the configured password hasher.
func (b *Builder) UseHashPassword(fn HashPasswordFunc) *Builder {
	b.optional.hashPassword = fn
	return b
}

// UseGenerateID overrides the uuid or ulid id generator.
func (b *Builder) UseGenerateID(fn GenerateIDFunc) *Builder {
	b.optional.generateID = fn
	return b
}

// UseCheckPassword overrides password.Compare. Register it together with
// UseHashPassword when hashes use a custom format.
func (b *Builder) UseCheckPassword(fn CheckPasswordFunc) *Builder {
	b.optional.checkPassword = fn
	return b
}

// Intercept registers the veto hook of flow. A nil fn restores the
// pass-through default.
func (b *Builder) Intercept(flow Flow, fn InterceptFunc) *Builder {
	if flow < 0 || flow >= flowCount {
		b.err = oops.Code("AUTHTOOLS_CONFIG_INVALID").With("flow", int(flow)).Wrapf(ErrInvalidConfig, "unknown flow")
		return b
	}
	b.intercepts[flow] = fn
	return b
}

// Build resolves the configuration and freezes the hook tables into an
// Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if b.err != nil {
		return nil, b.err
	}

	cfg, err := ResolveConfig(b.opts)
	if err != nil {
		return nil, err
	}

	hasher, err := password.New(cfg.Hashing)
	if err != nil {
		return nil, oops.Code("AUTHTOOLS_CONFIG_INVALID").With("field", "hashing").Wrap(err)
	}

	accessTokens, err := jwt.NewManager(jwt.Config{Secret: cfg.AccessTokenSecret, TTL: cfg.AccessTokenTTL})
	if err != nil {
		return nil, oops.Code("AUTHTOOLS_CONFIG_INVALID").With("field", "access_token_secret").Wrap(err)
	}
	// Refresh tokens carry no expiry; the token store bounds their life.
	refreshTokens, err := jwt.NewManager(jwt.Config{Secret: cfg.RefreshTokenSecret})
	if err != nil {
		return nil, oops.Code("AUTHTOOLS_CONFIG_INVALID").With("field", "refresh_token_secret").Wrap(err)
	}

	log := engineLogger{sink: b.logf}
	required := mergeRequired(defaultRequiredHooks(log), b.required)
	optional := mergeOptional(defaultOptionalHooks(hasher, cfg.IDFormat), b.optional)

	engine := &Engine{
		config:     cloneConfig(cfg),
		log:        log,
		intercepts: b.intercepts,
		metrics:    NewMetrics(cfg.Metrics),
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
	}
	engine.deps = flows.Deps{
		EmailValidation:    cfg.EmailValidation,
		PasswordValidation: cfg.PasswordValidation,
		PasswordDescriptor: cfg.PasswordRules,
		PasswordRule:       cfg.PasswordRule,

		GetUserByEmail:    required.getUserByEmail,
		GetUserByUsername: required.getUserByUsername,
		StoreUser:         required.storeUser,
		CheckTokenExists:  required.checkTokenExists,
		StoreToken:        required.storeToken,
		DeleteToken:       required.deleteToken,

		ValidateEmail:    optional.validateEmail,
		ValidatePassword: optional.validatePassword,
		HashPassword:     optional.hashPassword,
		GenerateID:       optional.generateID,
		CheckPassword:    optional.checkPassword,

		IssueAccess:   accessTokens.Issue,
		IssueRefresh:  refreshTokens.Issue,
		VerifyAccess:  accessTokens.Verify,
		VerifyRefresh: refreshTokens.Verify,
	}

	b.built = true

	return engine, nil
}

func mergeRequired(base, host requiredHooks) requiredHooks {
	if host.getUserByEmail != nil {
		base.getUserByEmail = host.getUserByEmail
	}
	if host.getUserByUsername != nil {
		base.getUserByUsername = host.getUserByUsername
	}
	if host.storeUser != nil {
		base.storeUser = host.storeUser
	}
	if host.checkTokenExists != nil {
		base.checkTokenExists = host.checkTokenExists
	}
	if host.storeToken != nil {
		base.storeToken = host.storeToken
	}
	if host.deleteToken != nil {
		base.deleteToken = host.deleteToken
	}
	return base
}

func mergeOptional(base, host optionalHooks) optionalHooks {
	if host.validateEmail != nil {
		base.validateEmail = host.validateEmail
	}
	if host.validatePassword != nil {
		base.validatePassword = host.validatePassword
	}
	if host.hashPassword != nil {
		base.hashPassword = host.hashPassword
	}
	if host.generateID != nil {
		base.generateID = host.generateID
	}
	if host.checkPassword != nil {
		base.checkPassword = host.checkPassword
	}
	return base
}
