package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/authtools"
	"github.com/MrEthical07/authtools/jwt"
	"github.com/MrEthical07/authtools/store/memory"
)

const (
	accessSecret  = "middleware-access-secret"
	refreshSecret = "middleware-refresh-secret"
)

func newEngine(t *testing.T) *authtools.Engine {
	t.Helper()
	opts := authtools.DefaultOptions()
	opts.AccessTokenSecret = accessSecret
	opts.RefreshTokenSecret = refreshSecret

	engine, err := authtools.New().
		WithOptions(opts).
		WithLogFunc(nil).
		WithUserStore(memory.NewUsers()).
		WithTokenStore(memory.NewTokens()).
		Build()
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	return engine
}

func issue(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.Issue(jwt.Payload{SubjectID: "user-1"}, []byte(secret), time.Minute)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Auth authtools.Status `json:"auth"`
	Data json.RawMessage  `json:"data"`
}

func TestRequireAccessToken(t *testing.T) {
	engine := newEngine(t)

	var seen authtools.TokenPayload
	protected := RequireAccessToken(engine, "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := PayloadFromContext(r.Context()); ok {
			seen = p
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   authtools.Code
	}{
		{name: "valid", header: "Bearer " + issue(t, accessSecret), wantStatus: http.StatusNoContent},
		{name: "any scheme word", header: "Token " + issue(t, accessSecret), wantStatus: http.StatusNoContent},
		{name: "missing header", header: "", wantStatus: http.StatusBadRequest, wantCode: authtools.CodeAccessTokenMissing},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusBadRequest, wantCode: authtools.CodeAccessTokenMissing},
		{name: "garbage", header: "Bearer not-a-jwt", wantStatus: http.StatusForbidden, wantCode: authtools.CodeAccessTokenInvalid},
		{name: "refresh secret", header: "Bearer " + issue(t, refreshSecret), wantStatus: http.StatusForbidden, wantCode: authtools.CodeAccessTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = authtools.TokenPayload{}
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "user-1", seen.SubjectID)
				return
			}

			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Auth.Error)
			assert.Equal(t, tt.wantCode, body.Auth.Code)
			assert.Equal(t, "null", string(body.Data))
			assert.Empty(t, seen.SubjectID)
		})
	}
}

func TestRequireAccessTokenCustomHeader(t *testing.T) {
	engine := newEngine(t)
	called := false
	h := RequireAccessToken(engine, "X-Auth")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, accessSecret))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Auth", "Bearer "+issue(t, accessSecret))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, called)
}

func TestRequireAccessTokenNilEngine(t *testing.T) {
	h := RequireAccessToken(nil, "")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, authtools.CodeServerError, body.Auth.Code)
}

func TestPayloadFromContextEmpty(t *testing.T) {
	_, ok := PayloadFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
