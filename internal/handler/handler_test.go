package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/adeelchainz/base-server/internal/config"
	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/adeelchainz/base-server/internal/dto"
	"github.com/adeelchainz/base-server/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	registerErr error
	confirmErr  error
	loginErr    error
	logoutErr   error
	validateErr error
	user        *domain.User

	registered   *dto.RegisterRequest
	confirmToken string
	confirmCode  string
	logoutAccess string
	logoutToken  string
	logoutCalls  int
}

func (f *fakeAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error) {
	f.registered = req
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &dto.AccountResponse{Success: true, ID: "user-1"}, nil
}

func (f *fakeAuthService) ConfirmRegistration(_ context.Context, token, code string) (*dto.AccountResponse, error) {
	f.confirmToken, f.confirmCode = token, code
	if f.confirmErr != nil {
		return nil, f.confirmErr
	}
	return &dto.AccountResponse{Success: true, ID: "user-1"}, nil
}

func (f *fakeAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.LoginResponse{
		Success:      true,
		User:         f.user,
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, accessToken, refreshToken string) error {
	f.logoutCalls++
	f.logoutAccess, f.logoutToken = accessToken, refreshToken
	return f.logoutErr
}

func (f *fakeAuthService) GetUser(_ context.Context, userID string) (*domain.User, error) {
	if f.user == nil || f.user.ID != userID {
		return nil, domain.NotFound("User is not found")
	}
	return f.user, nil
}

func (f *fakeAuthService) ValidateToken(_ context.Context, token string) (*domain.TokenClaims, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	if token != "access-token" {
		return nil, domain.Unauthenticated("Invalid or expired token")
	}
	return &domain.TokenClaims{UserID: "user-1"}, nil
}

func testConfig(env string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{APIRoot: "/v1", CookieDomain: "example.com"},
		JWT: config.JWTConfig{
			AccessTokenExpiry:  config.Duration{Duration: time.Hour},
			RefreshTokenExpiry: config.Duration{Duration: 365 * 24 * time.Hour},
		},
		Env: env,
	}
}

func newTestRouter(svc service.AuthService, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)

	responder := NewResponder(cfg, zap.NewNop())
	h := NewAuthHandler(svc, responder, NewSessionCookies(cfg), zap.NewNop())

	router := gin.New()
	router.NoRoute(responder.NoRoute)

	api := router.Group(cfg.Server.APIRoot)
	api.GET("/self", responder.Self)
	api.POST("/register", h.Register)
	api.PATCH(ConfirmRegistrationPath, h.ConfirmRegistration)
	api.POST("/login", h.Login)
	api.PUT("/logout", AuthMiddleware(svc, responder), h.Logout)
	api.GET("/me", AuthMiddleware(svc, responder), h.GetMe)

	api.GET("/boom", func(c *gin.Context) {
		responder.Error(c, errors.New("pq: connection refused"))
	})

	return router
}

func do(router http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

const validRegisterBody = `{"name":"Ada","email":" Ada@X.com ","phoneNumber":"16502530000","password":"Str0ng!Pass","consent":true}`

func TestRegister(t *testing.T) {
	svc := &fakeAuthService{}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPost, "/v1/register", validRegisterBody)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(http.StatusCreated), body["statusCode"])
	assert.Equal(t, map[string]any{"success": true, "_id": "user-1"}, body["data"])

	request := body["request"].(map[string]any)
	assert.Equal(t, http.MethodPost, request["method"])
	assert.Equal(t, "/v1/register", request["url"])
	assert.NotEmpty(t, request["ip"])

	require.NotNil(t, svc.registered)
	assert.Equal(t, "ada@x.com", svc.registered.Email)
}

func TestRegisterValidation(t *testing.T) {
	svc := &fakeAuthService{}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPost, "/v1/register", `{"name":"A","email":"nope","phoneNumber":"12","password":"weak","consent":false}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])

	fields := body["data"].(map[string]any)
	for _, field := range []string{"name", "email", "phoneNumber", "password", "consent"} {
		assert.Contains(t, fields, field)
	}
	assert.Nil(t, svc.registered)

	w = do(router, http.MethodPost, "/v1/register", `{not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, MsgInvalidBody, decode(t, w)["message"])
}

func TestRegisterMapsErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"conflict", domain.Conflict("User already exists with this email"), http.StatusUnprocessableEntity},
		{"invalid phone", domain.Validation("Invalid phone number"), http.StatusUnprocessableEntity},
		{"store failure", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeAuthService{registerErr: tt.err}, testConfig(config.EnvDevelopment))

			w := do(router, http.MethodPost, "/v1/register", validRegisterBody)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.Equal(t, float64(tt.status), body["statusCode"])
			assert.NotNil(t, body["trace"])
		})
	}
}

func TestConfirmRegistration(t *testing.T) {
	svc := &fakeAuthService{}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPatch, "/v1/registration/confirm/tok-1?code=004217", "")

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok-1", svc.confirmToken)
	assert.Equal(t, "004217", svc.confirmCode)

	svc.confirmErr = domain.NotFound("User is not found")
	w = do(router, http.MethodPatch, "/v1/registration/confirm/tok-1?code=000000", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.confirmErr = domain.InvalidState("Account is already confirmed")
	w = do(router, http.MethodPatch, "/v1/registration/confirm/tok-1?code=004217", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Account is already confirmed", decode(t, w)["message"])
}

func TestLoginSetsSessionCookies(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: "user-1", Email: "ada@x.com", PasswordHash: "secret-hash"}}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPost, "/v1/login", `{"email":"ada@x.com","password":"Str0ng!Pass"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	access := cookieByName(w, AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access-token", access.Value)
	assert.Equal(t, "/v1", access.Path)
	assert.Equal(t, "example.com", access.Domain)
	assert.Equal(t, 3600, access.MaxAge)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, http.SameSiteStrictMode, access.SameSite)

	refresh := cookieByName(w, RefreshTokenCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-token", refresh.Value)
	assert.Equal(t, 365*24*3600, refresh.MaxAge)
	assert.True(t, refresh.HttpOnly)
}

func TestLoginCookiesAreSecureOutsideDevelopment(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: "user-1"}}
	router := newTestRouter(svc, testConfig(config.EnvProduction))

	w := do(router, http.MethodPost, "/v1/login", `{"email":"ada@x.com","password":"Str0ng!Pass"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cookieByName(w, AccessTokenCookie).Secure)
	assert.True(t, cookieByName(w, RefreshTokenCookie).Secure)
}

func TestLoginFailures(t *testing.T) {
	svc := &fakeAuthService{loginErr: domain.Auth("Invalid email or password")}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPost, "/v1/login", `{"email":"ada@x.com","password":"Wr0ng!Pass"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, cookieByName(w, AccessTokenCookie))

	w = do(router, http.MethodPost, "/v1/login", `{"email":"ada@x.com","password":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestLogoutRequiresSession(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: "user-1"}}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodPut, "/v1/logout", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodPut, "/v1/logout", "", &http.Cookie{Name: AccessTokenCookie, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.logoutCalls)
}

func TestLogoutClearsCookiesEvenOnFailure(t *testing.T) {
	for _, logoutErr := range []error{nil, errors.New("redis down")} {
		svc := &fakeAuthService{user: &domain.User{ID: "user-1"}, logoutErr: logoutErr}
		router := newTestRouter(svc, testConfig(config.EnvDevelopment))

		w := do(router, http.MethodPut, "/v1/logout", "",
			&http.Cookie{Name: AccessTokenCookie, Value: "access-token"},
			&http.Cookie{Name: RefreshTokenCookie, Value: "refresh-token"},
		)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, MsgSuccess, decode(t, w)["message"])
		assert.Equal(t, "access-token", svc.logoutAccess)
		assert.Equal(t, "refresh-token", svc.logoutToken)

		for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
			cleared := cookieByName(w, name)
			require.NotNil(t, cleared, name)
			assert.Empty(t, cleared.Value)
			assert.Negative(t, cleared.MaxAge)
			assert.Equal(t, "/v1", cleared.Path)
		}
	}
}

func TestGetMe(t *testing.T) {
	svc := &fakeAuthService{user: &domain.User{ID: "user-1", Email: "ada@x.com"}}
	router := newTestRouter(svc, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodGet, "/v1/me", "", &http.Cookie{Name: AccessTokenCookie, Value: "access-token"})

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "user-1", data["_id"])
	assert.Equal(t, "ada@x.com", data["email"])

	svc.user = &domain.User{ID: "someone-else"}
	w = do(router, http.MethodGet, "/v1/me", "", &http.Cookie{Name: AccessTokenCookie, Value: "access-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductionEnvelopeHidesInternals(t *testing.T) {
	router := newTestRouter(&fakeAuthService{}, testConfig(config.EnvProduction))

	w := do(router, http.MethodGet, "/v1/boom", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, MsgSomethingWentWrong, body["message"])
	assert.NotContains(t, body, "trace")
	assert.NotContains(t, body["request"].(map[string]any), "ip")
}

func TestDevelopmentEnvelopeExposesInternals(t *testing.T) {
	router := newTestRouter(&fakeAuthService{}, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodGet, "/v1/boom", "")

	body := decode(t, w)
	assert.Equal(t, "pq: connection refused", body["message"])
	assert.Equal(t, map[string]any{"error": "pq: connection refused"}, body["trace"])
}

func TestSelfAndNoRoute(t *testing.T) {
	router := newTestRouter(&fakeAuthService{}, testConfig(config.EnvDevelopment))

	w := do(router, http.MethodGet, "/v1/self", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, MsgSuccess, decode(t, w)["message"])

	w = do(router, http.MethodGet, "/v1/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, MsgRouteNotFound, decode(t, w)["message"])
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(domain.KindValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(domain.KindConflict))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.KindInvalidState))
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.KindNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.KindAuth))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(domain.KindUnauthenticated))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(domain.KindRateLimited))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(domain.KindInternal))
}
