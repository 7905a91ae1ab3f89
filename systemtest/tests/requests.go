package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/dto"
	"github.com/whitelisthub/whitelist-hub/internal/requests"
)

func TestRequestWorkflow(t *testing.T, router *gin.Engine, token string) {
	var created requests.Request

	t.Run("submit is public", func(t *testing.T) {
		body := dto.CreateRequestRequest{
			DiscordID:         "123456789012345678",
			DiscordUsername:   "steve#0001",
			MinecraftUsername: "Steve",
			ServerID:          "workflow-smp",
		}
		rr := doJSON(router, "POST", "/api/requests", body)
		require.Equal(t, http.StatusOK, rr.Code)

		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, requests.StatusPending, created.Status)
	})

	t.Run("second pending rejected", func(t *testing.T) {
		body := dto.CreateRequestRequest{
			DiscordID:       "123456789012345678",
			DiscordUsername: "steve#0001",
		}
		rr := doJSON(router, "POST", "/api/requests", body)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("bad discord id rejected", func(t *testing.T) {
		body := dto.CreateRequestRequest{DiscordID: "nope", DiscordUsername: "steve#0001"}
		rr := doJSON(router, "POST", "/api/requests", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list requires admin", func(t *testing.T) {
		rr := doJSON(router, "GET", "/api/requests", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = doJSONWithToken(router, "GET", "/api/requests", nil, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var reqs []requests.Request
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reqs))
		assert.NotEmpty(t, reqs)
	})

	t.Run("approve without live agent is degraded", func(t *testing.T) {
		body := dto.ReviewRequestRequest{Status: requests.StatusApproved, ReviewedBy: "Admin"}
		rr := doJSONWithToken(router, "PUT", "/api/requests/"+created.ID, body, token)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp dto.ReviewRequestResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, requests.StatusApproved, resp.Request.Status)
		assert.False(t, resp.WhitelistNotified)
	})

	t.Run("review unknown id", func(t *testing.T) {
		body := dto.ReviewRequestRequest{Status: requests.StatusApproved}
		rr := doJSONWithToken(router, "PUT", "/api/requests/no-such-id", body, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := doJSONWithToken(router, "DELETE", "/api/requests/"+created.ID, nil, token)
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = doJSONWithToken(router, "DELETE", "/api/requests/"+created.ID, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
