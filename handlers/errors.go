package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FieldError names one rejected input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// validationFailed writes the 422 contract shared by every endpoint:
// {"error":"validation failed","fields":[{"field":...,"error":...}]}.
func validationFailed(c *gin.Context, fields ...FieldError) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fields})
}

// storeFailed writes the opaque 500 used when the storage backend errors.
func storeFailed(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
}
