package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/document"
	"github.com/docschema/docschema/internal/document/service"
	"github.com/docschema/docschema/pkg/middleware"
)

// RegisterDocumentRoutes mounts the document API on r. r must run
// middleware.TenantMiddleware.
func RegisterDocumentRoutes(r gin.IRouter, svc service.Service) {
	g := r.Group("/api/documents")

	g.GET("", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), middleware.CustomerID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.POST("", func(c *gin.Context) {
		var req service.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Invalid("body", err.Error()))
			return
		}
		d, err := svc.Create(c.Request.Context(), middleware.CustomerID(c), req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	})

	g.GET("/:id", func(c *gin.Context) {
		d, err := svc.Get(c.Request.Context(), middleware.CustomerID(c), c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	g.GET("/:id/view", func(c *gin.Context) {
		v, err := svc.View(c.Request.Context(), middleware.CustomerID(c), c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	g.PUT("/:id", func(c *gin.Context) {
		var p document.Patch
		if err := c.ShouldBindJSON(&p); err != nil {
			apperr.Respond(c, apperr.Invalid("body", err.Error()))
			return
		}
		d, err := svc.Update(c.Request.Context(), middleware.CustomerID(c), c.Param("id"), p)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.CustomerID(c), c.Param("id")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
