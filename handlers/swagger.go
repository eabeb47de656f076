package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the room service.
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
    <title>tertulia — Swagger</title>
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

// Minimal OpenAPI document describing the room endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "tertulia", "version": "v0.1.0" },
  "paths": {
    "/api/v1/participants": {
      "post": {
        "summary": "Join the room",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"}}}}}},
        "responses": { "201": { "description": "joined" }, "409": { "description": "name already taken" }, "422": { "description": "validation failed" } }
      },
      "get": { "summary": "List participants", "responses": { "200": { "description": "everyone currently in the room" } } }
    },
    "/api/v1/heartbeat": {
      "post": { "summary": "Refresh the caller's presence", "parameters": [ {"name":"X-Chat-Name","in":"header","required":true,"schema":{"type":"string"}} ], "responses": { "200": { "description": "refreshed" }, "404": { "description": "not in the room" } } }
    },
    "/api/v1/messages": {
      "post": {
        "summary": "Post a message",
        "parameters": [ {"name":"X-Chat-Name","in":"header","required":true,"schema":{"type":"string"}} ],
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"to":{"type":"string"},"text":{"type":"string"},"kind":{"type":"string","enum":["message","private_message"]}}}}}},
        "responses": { "201": { "description": "message recorded" }, "422": { "description": "validation failed or sender unknown" } }
      },
      "get": {
        "summary": "Poll visible messages, oldest first",
        "parameters": [ {"name":"X-Chat-Name","in":"header","required":true,"schema":{"type":"string"}}, {"name":"limit","in":"query","required":true,"schema":{"type":"integer"}} ],
        "responses": { "200": { "description": "visible messages" }, "422": { "description": "validation failed" } }
      }
    },
    "/api/v1/messages/search": {
      "get": {
        "summary": "Search visible messages by text",
        "parameters": [ {"name":"X-Chat-Name","in":"header","required":true,"schema":{"type":"string"}}, {"name":"q","in":"query","required":true,"schema":{"type":"string"}}, {"name":"limit","in":"query","schema":{"type":"integer"}} ],
        "responses": { "200": { "description": "matching messages" } }
      }
    },
    "/api/v1/messages/{id}": {
      "patch": { "summary": "Edit one of your messages", "responses": { "200": { "description": "updated" }, "401": { "description": "not your message" }, "404": { "description": "not found" } } },
      "delete": { "summary": "Delete one of your messages", "responses": { "204": { "description": "deleted" }, "401": { "description": "not your message" }, "404": { "description": "not found" } } }
    },
    "/api/v1/stats": { "get": { "summary": "Room totals and process health", "responses": { "200": { "description": "stats" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
