package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
)

func TestWhitelistRoutes(t *testing.T, router *gin.Engine, apiKey string) {
	t.Run("401 without api key", func(t *testing.T) {
		body := dto.WhitelistCommandRequest{Username: "Steve"}
		rr := doJSON(router, "POST", "/api/whitelist", body)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("401 with wrong api key", func(t *testing.T) {
		body := dto.WhitelistCommandRequest{Username: "Steve"}
		rr := doJSONWithAPIKey(router, "POST", "/api/whitelist", body, "wrong-key")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("offline tenant is not delivered", func(t *testing.T) {
		body := dto.WhitelistCommandRequest{ServerID: "offline-smp", Username: "Steve"}
		rr := doJSONWithAPIKey(router, "POST", "/api/whitelist", body, apiKey)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.WhitelistCommandResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Delivered)
	})

	t.Run("username required", func(t *testing.T) {
		rr := doJSONWithAPIKey(router, "POST", "/api/whitelist", gin.H{"serverId": "x"}, apiKey)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = doJSONWithAPIKey(router, "DELETE", "/api/whitelist", gin.H{"serverId": "x"}, apiKey)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
