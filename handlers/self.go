package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docschema/docschema/internal/config"
	"github.com/docschema/docschema/internal/tokens"
	"github.com/docschema/docschema/pkg/logger"
	"github.com/docschema/docschema/pkg/middleware"
)

// RegisterSelfRoutes mounts the caller identity endpoints on r. r must run
// middleware.TenantMiddleware.
func RegisterSelfRoutes(r gin.IRouter, cfg *config.Config) {
	r.GET("/api/self", func(c *gin.Context) {
		t, _ := middleware.TenantFrom(c)
		c.JSON(http.StatusOK, t)
	})

	r.GET("/api/integration-token", func(c *gin.Context) {
		t, _ := middleware.TenantFrom(c)
		token, err := tokens.GenerateIntegrationToken(cfg, t.CustomerID, t.CustomerName)
		if err != nil {
			logger.Errorf("error generating integration token: %v", err)
			if errors.Is(err, tokens.ErrNotConfigured) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Integration credentials not configured"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})
}
