package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/assetflow/backend/internal/domain/org"
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/assetflow/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScopeResolver struct {
	scope org.Scope
	err   error
	calls int
}

func (r *stubScopeResolver) Resolve(_ context.Context, userID, branchID uuid.UUID, role org.Role) (org.Scope, error) {
	r.calls++
	if r.err != nil {
		return org.Scope{}, r.err
	}
	scope := r.scope
	scope.UserID = userID
	scope.BranchID = branchID
	scope.Role = role
	return scope, nil
}

func newScopeTestRouter(svc *auth.JWTService, resolver org.ScopeResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuthMiddleware(svc))
	r.Use(ScopeMiddleware(resolver, nil))
	r.GET("/scoped", func(c *gin.Context) {
		scope, ok := GetScope(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no scope"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"branch_id": scope.BranchID.String(),
			"role":      string(scope.Role),
		})
	})
	return r
}

func makeBearerToken(t *testing.T, svc *auth.JWTService, role org.Role) string {
	t.Helper()
	token, _, err := svc.GenerateToken(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		BranchID: uuid.New(),
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func TestScopeMiddleware_ResolvesScope(t *testing.T) {
	svc := newAuthTestService(time.Hour)
	resolver := &stubScopeResolver{}
	router := newScopeTestRouter(svc, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("Authorization", "Bearer "+makeBearerToken(t, svc, org.RoleBranchManager))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, resolver.calls)
	assert.Contains(t, w.Body.String(), string(org.RoleBranchManager))
}

func TestScopeMiddleware_UnknownBranch(t *testing.T) {
	svc := newAuthTestService(time.Hour)
	resolver := &stubScopeResolver{err: shared.ErrNotFound}
	router := newScopeTestRouter(svc, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("Authorization", "Bearer "+makeBearerToken(t, svc, org.RoleBranchStaff))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
}

func TestScopeMiddleware_ResolverFailure(t *testing.T) {
	svc := newAuthTestService(time.Hour)
	resolver := &stubScopeResolver{err: assert.AnError}
	router := newScopeTestRouter(svc, resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	req.Header.Set("Authorization", "Bearer "+makeBearerToken(t, svc, org.RoleBranchStaff))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestScopeMiddleware_NoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ScopeMiddleware(&stubScopeResolver{}, nil))
	r.GET("/scoped", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
