package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
)

func TestServerCRUD(t *testing.T, router *gin.Engine, token string) {
	var firstKey string

	t.Run("create generates api key", func(t *testing.T) {
		body := dto.UpsertServerRequest{
			ID:      "crud-smp",
			Name:    "CRUD SMP",
			Address: "mc.example.com",
			Port:    25565,
		}
		rr := doJSONWithToken(router, "POST", "/api/servers", body, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ServerResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "crud-smp", resp.ID)
		assert.True(t, strings.HasPrefix(resp.APIKey, "sk_"))
		assert.False(t, resp.Connected)
		firstKey = resp.APIKey
	})

	t.Run("update keeps api key", func(t *testing.T) {
		body := dto.UpsertServerRequest{ID: "crud-smp", Name: "Renamed SMP", Port: 25566}
		rr := doJSONWithToken(router, "POST", "/api/servers", body, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ServerResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Renamed SMP", resp.Name)
		assert.Equal(t, firstKey, resp.APIKey)
	})

	t.Run("rotate replaces api key", func(t *testing.T) {
		body := dto.UpsertServerRequest{ID: "crud-smp", Name: "Renamed SMP", RotateKey: true}
		rr := doJSONWithToken(router, "POST", "/api/servers", body, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ServerResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEqual(t, firstKey, resp.APIKey)
		assert.True(t, strings.HasPrefix(resp.APIKey, "sk_"))
	})

	t.Run("list includes server", func(t *testing.T) {
		rr := doJSONWithToken(router, "GET", "/api/servers", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ListServersResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.GreaterOrEqual(t, resp.Count, 1)

		found := false
		for _, s := range resp.Servers {
			if s.ID == "crud-smp" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("missing id rejected", func(t *testing.T) {
		rr := doJSONWithToken(router, "POST", "/api/servers", gin.H{"name": "no id"}, token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("401 without token", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/servers", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("state 404 before agent reports", func(t *testing.T) {
		rr := doJSONWithToken(router, "GET", "/api/servers/crud-smp/state", nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := doJSONWithToken(router, "DELETE", "/api/servers/crud-smp", nil, token)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = doJSONWithToken(router, "DELETE", "/api/servers/crud-smp", nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
