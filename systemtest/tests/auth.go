package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/auth"
)

func TestAdminLogin(t *testing.T, router *gin.Engine, jwtSecret, password string) {
	t.Run("success", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/auth/login", dto.LoginRequest{Password: password})
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.LoginResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Token)

		claims, err := auth.ValidateToken(jwtSecret, resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/auth/login", dto.LoginRequest{Password: "wrongpassword"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rr := doJSON(router, "POST", "/api/auth/login", gin.H{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// Login is the helper the other system tests use to get an admin token.
func Login(t *testing.T, router *gin.Engine, password string) string {
	t.Helper()
	rr := doJSON(router, "POST", "/api/auth/login", dto.LoginRequest{Password: password})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}
