package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mbocion/polis/internal/portfolio/auth"
)

// RouterConfig bundles the handlers and middleware going into the router.
type RouterConfig struct {
	ClientHandler   *ClientHandler
	ContractHandler *ContractHandler
	AuthMiddleware  *auth.Middleware
}

// NewRouter wires every API route onto a gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", HealthCheck)

	api := router.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}

	api.GET("/clients", cfg.ClientHandler.List)
	api.GET("/clients/:id", cfg.ClientHandler.Get)
	api.POST("/clients", cfg.ClientHandler.Create)
	api.PUT("/clients/:id", cfg.ClientHandler.Update)
	api.DELETE("/clients/:id", cfg.ClientHandler.Delete)

	api.GET("/contracts/:id", cfg.ContractHandler.Get)
	api.POST("/contracts", cfg.ContractHandler.Create)
	api.PATCH("/contracts/:id/cost", cfg.ContractHandler.UpdateCost)
	api.GET("/contracts/client/:clientId", cfg.ContractHandler.ListActive)
	api.GET("/contracts/client/:clientId/total-cost", cfg.ContractHandler.TotalCost)

	return router
}
