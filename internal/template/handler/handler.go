package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/docschema/docschema/internal/apperr"
	"github.com/docschema/docschema/internal/schema"
	"github.com/docschema/docschema/internal/template"
	"github.com/docschema/docschema/internal/template/service"
	"github.com/docschema/docschema/pkg/middleware"
)

type templateResponse struct {
	*template.Template
	Warnings []template.Warning `json:"warnings,omitempty"`
}

// RegisterTemplateRoutes mounts the template API on r. r must run
// middleware.TenantMiddleware.
func RegisterTemplateRoutes(r gin.IRouter, svc service.Service) {
	g := r.Group("/api/document-templates")

	g.GET("", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), middleware.CustomerID(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	})

	g.POST("", func(c *gin.Context) {
		var req template.Template
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Invalid("body", err.Error()))
			return
		}
		out, warnings, err := svc.Create(c.Request.Context(), middleware.CustomerID(c), &req)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, templateResponse{Template: out, Warnings: warnings})
	})

	g.GET("/:id", func(c *gin.Context) {
		t, err := svc.Get(c.Request.Context(), middleware.CustomerID(c), c.Param("id"))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	})

	g.PUT("/:id", func(c *gin.Context) {
		var p template.Patch
		if err := c.ShouldBindJSON(&p); err != nil {
			apperr.Respond(c, apperr.Invalid("body", err.Error()))
			return
		}
		out, warnings, err := svc.Update(c.Request.Context(), middleware.CustomerID(c), c.Param("id"), p)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, templateResponse{Template: out, Warnings: warnings})
	})

	g.DELETE("/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), middleware.CustomerID(c), c.Param("id")); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	g.GET("/:id/schema", func(c *gin.Context) {
		b, err := svc.Schema(c.Request.Context(), middleware.CustomerID(c), c.Param("id"), schemaOptions(c)...)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", b)
	})

	g.POST("/:id/schema/export", func(c *gin.Context) {
		out, err := svc.ExportSchema(c.Request.Context(), middleware.CustomerID(c), c.Param("id"), schemaOptions(c)...)
		if errors.Is(err, service.ErrExportDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Schema export is not configured"})
			return
		}
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})
}

// schemaOptions reads ?legacy=true.
func schemaOptions(c *gin.Context) []schema.Option {
	if legacy, _ := strconv.ParseBool(c.Query("legacy")); legacy {
		return []schema.Option{schema.WithLegacyMinLength()}
	}
	return nil
}
