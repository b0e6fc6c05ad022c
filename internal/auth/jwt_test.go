package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napieracademy/sitemap-manager/internal/auth"
)

const testSecret = "test-secret-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter() *gin.Engine {
	router := gin.New()
	router.POST("/generate", auth.Middleware(testSecret), func(c *gin.Context) {
		claims, ok := auth.GetClaims(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "claims missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sub": claims.Sub})
	})
	return router
}

func signToken(t *testing.T, secret string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Sub: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()

	router := newProtectedRouter()
	token := signToken(t, testSecret, time.Now().Add(time.Hour))

	w := request(router, "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sub":"admin"`)
}

func TestMiddleware_MissingHeader(t *testing.T) {
	t.Parallel()

	w := request(newProtectedRouter(), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestMiddleware_MalformedHeader(t *testing.T) {
	t.Parallel()

	w := request(newProtectedRouter(), "Token abc")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid authorization header format")
}

func TestMiddleware_WrongSecret(t *testing.T) {
	t.Parallel()

	router := newProtectedRouter()
	token := signToken(t, "other-secret", time.Now().Add(time.Hour))

	w := request(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	t.Parallel()

	router := newProtectedRouter()
	token := signToken(t, testSecret, time.Now().Add(-time.Hour))

	w := request(router, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
