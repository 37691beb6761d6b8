package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	ctx := context.Background()
	token, err := manager.GenerateToken(ctx, "user-1", "alice", []string{"user"}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{"user"}, claims.Roles)
	assert.Equal(t, "codegen-service", claims.Issuer)
}

func TestJWTManager_RequiresKey(t *testing.T) {
	_, err := NewJWTManager("")
	assert.Error(t, err)
}

func TestJWTManager_RejectsExpiredToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	ctx := context.Background()
	token, err := manager.GenerateToken(ctx, "user-1", "alice", nil, -time.Minute)
	require.NoError(t, err)

	_, err = manager.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsWrongKey(t *testing.T) {
	first, err := NewJWTManager("secret-a")
	require.NoError(t, err)
	second, err := NewJWTManager("secret-b")
	require.NoError(t, err)

	ctx := context.Background()
	token, err := first.GenerateToken(ctx, "user-1", "alice", nil, time.Hour)
	require.NoError(t, err)

	_, err = second.ValidateToken(ctx, token)
	assert.Error(t, err)
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager, err := NewJWTManager("test-secret")
	require.NoError(t, err)

	router := gin.New()
	router.POST("/protected", RequireAuth(manager), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/protected", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := manager.GenerateToken(context.Background(), "user-1", "alice", []string{"user"}, time.Hour)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "user-1")
	})
}
