package http

import (
	"github.com/gin-gonic/gin"

	"github.com/whitelisthub/whitelist-hub/internal/api/http/handler"
	"github.com/whitelisthub/whitelist-hub/internal/api/http/middleware"
	"github.com/whitelisthub/whitelist-hub/internal/auth"
	"github.com/whitelisthub/whitelist-hub/internal/credentials"
	"github.com/whitelisthub/whitelist-hub/internal/hub"
	"github.com/whitelisthub/whitelist-hub/internal/requests"
	"github.com/whitelisthub/whitelist-hub/internal/ws"
)

type Services struct {
	Hub         *hub.Hub
	Credentials credentials.Store
	Requests    *requests.Service
	Agent       *ws.Server
	Auth        auth.Config
}

func SetupRoute(engine *gin.Engine, srvs *Services, cfg Config) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler()
	engine.GET("/health", healthHandler.Check)

	// Agent WebSocket endpoint
	engine.GET("/ws", func(c *gin.Context) {
		srvs.Agent.ServeHTTP(c.Writer, c.Request)
	})

	authHandler := handler.NewAuthHandler(srvs.Auth, cfg.AdminPasswordHash)
	engine.POST("/api/auth/login", authHandler.Login)

	requestsHandler := handler.NewRequestsHandler(srvs.Requests)
	engine.POST("/api/requests", requestsHandler.CreateRequest)

	// Service-to-service routes (Discord bot), guarded by a shared API key
	whitelistHandler := handler.NewWhitelistHandler(srvs.Hub)
	service := engine.Group("/api", middleware.APIKeyAuth(cfg.AdminAPIKey))
	{
		service.POST("/whitelist", whitelistHandler.Add)
		service.DELETE("/whitelist", whitelistHandler.Remove)
	}

	// Dashboard admin routes
	serversHandler := handler.NewServersHandler(srvs.Credentials, srvs.Hub)
	admin := engine.Group("/api", middleware.AdminAuth(srvs.Auth.JWTSecret))
	{
		admin.GET("/servers", serversHandler.ListServers)
		admin.POST("/servers", serversHandler.UpsertServer)
		admin.DELETE("/servers/:id", serversHandler.DeleteServer)
		admin.GET("/servers/:id/state", serversHandler.GetState)
		admin.GET("/servers/:id/events", serversHandler.GetEvents)
		admin.GET("/connections", serversHandler.ListConnections)

		admin.GET("/requests", requestsHandler.ListRequests)
		admin.PUT("/requests/:id", requestsHandler.ReviewRequest)
		admin.DELETE("/requests/:id", requestsHandler.DeleteRequest)
	}
}
