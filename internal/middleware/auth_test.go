package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Hassan-Shakoor/DealShark-BE-sub000/internal/auth"
)

func newProtectedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString("userID"),
			"userType": c.GetString("userType"),
		})
	})
	r.GET("/test", handlers...)
	return r
}

func TestAuthMiddleware_MissingAuthHeader(t *testing.T) {
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthMiddleware_InvalidAuthFormat(t *testing.T) {
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "InvalidFormat")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	r := newProtectedRouter()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid_token_xyz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	pair, err := auth.GenerateTokenPair("test-user-id", "test@example.com", auth.UserTypeCustomer)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	r := newProtectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	pair, err := auth.GenerateTokenPair("test-user-id", "test@example.com", auth.UserTypeCustomer)
	if err != nil {
		t.Fatal(err)
	}

	r := newProtectedRouter()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("refresh token accepted on a protected route: %d", w.Code)
	}
}

func TestRequireRole_AllowsMatchingType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	pair, err := auth.GenerateTokenPair("biz-user", "biz@example.com", auth.UserTypeBusiness)
	if err != nil {
		t.Fatal(err)
	}

	r := newProtectedRouter(RequireRole(auth.UserTypeBusiness))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for business user, got %d", w.Code)
	}
}

func TestRequireRole_BlocksOtherType(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	pair, err := auth.GenerateTokenPair("cust-user", "cust@example.com", auth.UserTypeCustomer)
	if err != nil {
		t.Fatal(err)
	}

	r := newProtectedRouter(RequireRole(auth.UserTypeBusiness))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for customer on business route, got %d", w.Code)
	}
}
