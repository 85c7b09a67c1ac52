package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sevapay.backend/pkg/jwt"
)

func newJWTService() *jwt.JWTService {
	return jwt.NewJWTService("test-secret", time.Hour, 24*time.Hour)
}

func adminToken(t *testing.T, svc *jwt.JWTService, adminType string, departments []string) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(uuid.New(), "admin@sevapay.in", adminType, departments)
	require.NoError(t, err)
	return pair.AccessToken
}

func authedRouter(svc *jwt.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(svc)}, extra...)
	handlers = append(handlers, func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/ping", handlers...)
	return r
}

func ping(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_RejectsMissingAndMalformedHeaders(t *testing.T) {
	svc := newJWTService()
	r := authedRouter(svc)

	w := ping(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header required")

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Basic abc123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization header")

	w = ping(r, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuth_ExpiredToken(t *testing.T) {
	expiredSvc := jwt.NewJWTService("test-secret", -time.Minute, -time.Minute)
	pair, err := expiredSvc.GenerateTokenPair(uuid.New(), "admin@sevapay.in", "super_admin", nil)
	require.NoError(t, err)

	r := authedRouter(newJWTService())
	w := ping(r, pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")
}

func TestRequireDepartment(t *testing.T) {
	svc := newJWTService()
	r := authedRouter(svc, RequireDepartment("wallet"))

	// super_admin bypasses the department gate.
	w := ping(r, adminToken(t, svc, "super_admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The "all" sentinel grants every department.
	w = ping(r, adminToken(t, svc, "sub_admin", []string{"all"}))
	assert.Equal(t, http.StatusOK, w.Code)

	// A matching department grants access.
	w = ping(r, adminToken(t, svc, "sub_admin", []string{"reports", "wallet"}))
	assert.Equal(t, http.StatusOK, w.Code)

	// Anything else is denied.
	w = ping(r, adminToken(t, svc, "sub_admin", []string{"reports"}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Department access denied")
}

func TestRequirePartner_BlocksAdminTokens(t *testing.T) {
	svc := newJWTService()
	r := authedRouter(svc, RequirePartner())

	w := ping(r, adminToken(t, svc, "super_admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	token, err := svc.GenerateImpersonationToken(uuid.New(), uuid.New(), "shop@sevapay.in", time.Hour)
	require.NoError(t, err)
	w = ping(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_BlocksPartnerTokens(t *testing.T) {
	svc := newJWTService()
	r := authedRouter(svc, RequireAdmin())

	token, err := svc.GenerateImpersonationToken(uuid.New(), uuid.New(), "shop@sevapay.in", time.Hour)
	require.NoError(t, err)
	w := ping(r, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")

	w = ping(r, adminToken(t, svc, "sub_admin", []string{"all"}))
	assert.Equal(t, http.StatusOK, w.Code)
}
