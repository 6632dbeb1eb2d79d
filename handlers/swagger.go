package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers the API browser and its OpenAPI document.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docschema - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docschema", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Error": { "type": "object", "properties": { "error": { "type": "string" }, "details": { "type": "array", "items": { "$ref": "#/components/schemas/Issue" } } } },
      "Issue": { "type": "object", "properties": { "path": { "type": "string" }, "message": { "type": "string" } } },
      "Field": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": { "type": "string" },
          "type": { "type": "string", "enum": ["text", "number", "date", "select", "checkbox"] },
          "required": { "type": "boolean" },
          "options": { "type": "array", "items": { "type": "string" } },
          "defaultValue": {},
          "validation": { "type": "string", "enum": ["", "email", "phone", "url", "date", "number"] },
          "description": { "type": "string" }
        }
      },
      "Template": {
        "type": "object",
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string" },
          "description": { "type": "string" },
          "objectFields": { "type": "array", "items": { "$ref": "#/components/schemas/Field" } },
          "contactFields": { "type": "array", "items": { "$ref": "#/components/schemas/Field" } },
          "lineItemFields": { "type": "array", "items": { "$ref": "#/components/schemas/Field" } },
          "customerId": { "type": "string" },
          "createdAt": { "type": "string", "format": "date-time" },
          "updatedAt": { "type": "string", "format": "date-time" }
        }
      },
      "Document": {
        "type": "object",
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string" },
          "templateId": { "type": "string" },
          "objectVariables": { "type": "object", "additionalProperties": true },
          "contactVariables": { "type": "object", "additionalProperties": true },
          "lineItemVariables": { "type": "array", "items": { "type": "object", "additionalProperties": true } },
          "customerId": { "type": "string" },
          "createdAt": { "type": "string", "format": "date-time" },
          "updatedAt": { "type": "string", "format": "date-time" }
        }
      }
    }
  },
  "paths": {
    "/health": { "get": { "summary": "Liveness probe", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness probe", "responses": { "200": { "description": "all dependencies reachable" }, "503": { "description": "a dependency is down" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "text exposition format" } } } },
    "/api/self": { "get": { "summary": "Caller tenant identity", "responses": { "200": { "description": "customerId and customerName" }, "401": { "description": "unauthenticated" } } } },
    "/api/integration-token": { "get": { "summary": "Mint a workspace integration token", "responses": { "200": { "description": "token returned" }, "500": { "description": "integration credentials not configured" } } } },
    "/api/document-templates": {
      "get": { "summary": "List templates, newest first", "responses": { "200": { "description": "templates", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Template" } } } } } } },
      "post": {
        "summary": "Create a template",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Template" } } } },
        "responses": { "201": { "description": "created, with lint warnings" }, "400": { "description": "validation failed", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Error" } } } } }
      }
    },
    "/api/document-templates/{id}": {
      "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
      "get": { "summary": "Fetch a template", "responses": { "200": { "description": "template" }, "404": { "description": "Template not found" } } },
      "put": { "summary": "Update a template", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Template" } } } }, "responses": { "200": { "description": "updated" }, "400": { "description": "validation failed" }, "404": { "description": "Template not found" } } },
      "delete": { "summary": "Delete a template", "responses": { "204": { "description": "deleted" }, "404": { "description": "Template not found" } } }
    },
    "/api/document-templates/{id}/schema": {
      "parameters": [
        { "name": "id", "in": "path", "required": true, "schema": { "type": "string" } },
        { "name": "legacy", "in": "query", "required": false, "schema": { "type": "boolean" } }
      ],
      "get": { "summary": "Compiled JSON Schema (draft-07) of a template", "responses": { "200": { "description": "schema document" }, "404": { "description": "Template not found" } } }
    },
    "/api/document-templates/{id}/schema/export": {
      "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
      "post": { "summary": "Export the compiled schema to object storage", "responses": { "201": { "description": "object key and presigned URL" }, "503": { "description": "Schema export is not configured" } } }
    },
    "/api/documents": {
      "get": { "summary": "List documents, newest first", "responses": { "200": { "description": "documents", "content": { "application/json": { "schema": { "type": "array", "items": { "$ref": "#/components/schemas/Document" } } } } } } },
      "post": {
        "summary": "Create a document",
        "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } },
        "responses": { "201": { "description": "created" }, "400": { "description": "validation failed", "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Error" } } } } }
      }
    },
    "/api/documents/{id}": {
      "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
      "get": { "summary": "Fetch a document", "responses": { "200": { "description": "document" }, "404": { "description": "Document not found" } } },
      "put": { "summary": "Update a document", "requestBody": { "content": { "application/json": { "schema": { "$ref": "#/components/schemas/Document" } } } }, "responses": { "200": { "description": "updated" }, "400": { "description": "validation failed" }, "404": { "description": "Document not found" } } },
      "delete": { "summary": "Delete a document", "responses": { "204": { "description": "deleted" }, "404": { "description": "Document not found" } } }
    },
    "/api/documents/{id}/view": {
      "parameters": [{ "name": "id", "in": "path", "required": true, "schema": { "type": "string" } }],
      "get": { "summary": "Document with its template schema, flags a missing template", "responses": { "200": { "description": "document view" }, "404": { "description": "Document not found" } } }
    }
  }
}`
