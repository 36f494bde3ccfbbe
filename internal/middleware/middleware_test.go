package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain/model"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const jwtSecret = "test-secret"

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID       int64 `json:"user_id"`
	TokenVersion int   `json:"token_version"`
}

// =====================
// RoleProvider モック
// =====================

type MockRoleProvider struct {
	mock.Mock
}

func (m *MockRoleProvider) RoleFor(ctx context.Context, userID int64) (usecase.RoleInfo, bool, error) {
	args := m.Called(ctx, userID)
	info, _ := args.Get(0).(usecase.RoleInfo)
	return info, args.Bool(1), args.Error(2)
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, claims jwt.MapClaims, signingMethod jwt.SigningMethod) string {
	t.Helper()

	token := jwt.NewWithClaims(signingMethod, claims)

	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func userClaims(sub int64, tv int) jwt.MapClaims {
	return jwt.MapClaims{
		"sub": sub,
		"tv":  tv,
		"iat": 1,
		"exp": 9999999999,
	}
}

func runRequest(t *testing.T, e *echo.Echo, method string, path string, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeMWError(t *testing.T, rec *httptest.ResponseRecorder) mwErrorResponse {
	t.Helper()
	var r mwErrorResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	return r
}

func newEcho(guard *usecase.AdminGuard) *echo.Echo {
	e := echo.New()

	okHandler := func(c echo.Context) error {
		id, _ := middleware.IdentityFrom(c)
		return c.JSON(http.StatusOK, mwOKResponse{UserID: id.UserID, TokenVersion: id.TokenVersion})
	}

	e.GET("/me", okHandler, middleware.AuthJWT(jwtSecret))
	if guard != nil {
		e.GET("/admin/ping", okHandler, middleware.AuthJWT(jwtSecret), middleware.AdminGuard(guard))
	}
	return e
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_Valid(t *testing.T) {
	e := newEcho(nil)
	token := mustMakeJWT(t, jwtSecret, userClaims(10, 2), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/me", "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	var r mwOKResponse
	_ = json.NewDecoder(rec.Body).Decode(&r)
	assert.Equal(t, int64(10), r.UserID)
	assert.Equal(t, 2, r.TokenVersion)
}

func TestAuthJWT_Rejects(t *testing.T) {
	expired := userClaims(10, 0)
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	noTV := userClaims(10, 0)
	delete(noTV, "tv")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage", "Bearer abc.def.ghi"},
		{"wrong secret", "Bearer " + mustMakeJWT(t, "other", userClaims(10, 0), jwt.SigningMethodHS256)},
		{"wrong alg", "Bearer " + mustMakeJWT(t, jwtSecret, userClaims(10, 0), jwt.SigningMethodHS512)},
		{"expired", "Bearer " + mustMakeJWT(t, jwtSecret, expired, jwt.SigningMethodHS256)},
		{"no token version", "Bearer " + mustMakeJWT(t, jwtSecret, noTV, jwt.SigningMethodHS256)},
		{"zero sub", "Bearer " + mustMakeJWT(t, jwtSecret, userClaims(0, 0), jwt.SigningMethodHS256)},
	}

	e := newEcho(nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := runRequest(t, e, http.MethodGet, "/me", tc.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "log in", decodeMWError(t, rec).Error)
		})
	}
}

// =====================
// AdminGuard
// =====================

func TestAdminGuard_AllowsAdmin(t *testing.T) {
	roles := new(MockRoleProvider)
	roles.On("RoleFor", mock.Anything, int64(1)).
		Return(usecase.RoleInfo{Role: model.RoleAdmin, TokenVersion: 0, Active: true}, true, nil).Once()

	e := newEcho(usecase.NewAdminGuard(roles, nil, time.Minute))
	token := mustMakeJWT(t, jwtSecret, userClaims(1, 0), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	roles.AssertExpectations(t)
}

func TestAdminGuard_CustomerForbidden(t *testing.T) {
	roles := new(MockRoleProvider)
	roles.On("RoleFor", mock.Anything, int64(2)).
		Return(usecase.RoleInfo{Role: model.RoleCustomer, Active: true}, true, nil).Once()

	e := newEcho(usecase.NewAdminGuard(roles, nil, time.Minute))
	token := mustMakeJWT(t, jwtSecret, userClaims(2, 0), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin required", decodeMWError(t, rec).Error)
}

func TestAdminGuard_RevokedSession(t *testing.T) {
	roles := new(MockRoleProvider)
	roles.On("RoleFor", mock.Anything, int64(1)).
		Return(usecase.RoleInfo{Role: model.RoleAdmin, TokenVersion: 1, Active: true}, true, nil).Once()

	e := newEcho(usecase.NewAdminGuard(roles, nil, time.Minute))
	token := mustMakeJWT(t, jwtSecret, userClaims(1, 0), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "log in", decodeMWError(t, rec).Error)
}

func TestAdminGuard_NoRoleStore(t *testing.T) {
	e := newEcho(usecase.NewAdminGuard(nil, nil, time.Minute))
	token := mustMakeJWT(t, jwtSecret, userClaims(1, 0), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAdminGuard_LookupFailureHidesCause(t *testing.T) {
	roles := new(MockRoleProvider)
	roles.On("RoleFor", mock.Anything, int64(1)).
		Return(usecase.RoleInfo{}, false, errors.New("pq: password authentication failed")).Once()

	e := newEcho(usecase.NewAdminGuard(roles, nil, time.Minute))
	token := mustMakeJWT(t, jwtSecret, userClaims(1, 0), jwt.SigningMethodHS256)

	rec := runRequest(t, e, http.MethodGet, "/admin/ping", "Bearer "+token)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeMWError(t, rec).Error)
}
