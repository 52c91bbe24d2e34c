package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the document service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRouter) {
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
    <title>docmanager - Swagger</title>
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
  "info": { "title": "docmanager", "version": "v0.1.0" },
  "components": {
    "schemas": {
      "Author": { "type": "object", "properties": { "id": {"type":"string"}, "name": {"type":"string"} } },
      "Document": { "type": "object", "properties": {
        "id": {"type":"string"}, "title": {"type":"string"}, "content": {"type":"string"},
        "author": {"$ref":"#/components/schemas/Author"}, "created": {"type":"string","format":"date-time"} } },
      "SearchRequest": { "type": "object", "properties": {
        "titlePrefixes": {"type":"array","items":{"type":"string"}},
        "containsContents": {"type":"array","items":{"type":"string"}},
        "authorIds": {"type":"array","items":{"type":"string"}},
        "createdFrom": {"type":"string","format":"date-time"},
        "createdTo": {"type":"string","format":"date-time"} } }
    }
  },
  "paths": {
    "/api/documents": {
      "get": { "summary": "List documents, optionally filtered by titlePrefix, contains, authorId, createdFrom, createdTo query parameters", "responses": { "200": { "description": "matching documents" }, "400": { "description": "invalid time filter" } } },
      "post": { "summary": "Save (upsert) a document", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/Document"} } } }, "responses": { "200": { "description": "document updated" }, "201": { "description": "document created with a new id" }, "400": { "description": "malformed body" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Find a document by id", "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } }
    },
    "/api/documents/search": {
      "post": { "summary": "Search documents", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/SearchRequest"} } } }, "responses": { "200": { "description": "matching documents" } } }
    },
    "/api/documents/export": {
      "post": { "summary": "Export matching documents to object storage", "requestBody": { "content": { "application/json": { "schema": {"$ref":"#/components/schemas/SearchRequest"} } } }, "responses": { "200": { "description": "snapshot key, name, count and download url" }, "502": { "description": "upload failed" }, "503": { "description": "export storage not configured" } } }
    },
    "/api/documents/export/{name}": {
      "get": { "summary": "Download a stored snapshot by the name returned from an export", "responses": { "200": { "description": "snapshot JSON" }, "400": { "description": "invalid name" }, "404": { "description": "snapshot not found" }, "502": { "description": "download failed" }, "503": { "description": "export storage not configured" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`
