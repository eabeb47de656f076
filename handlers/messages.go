package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/sanitize"
	"github.com/tertulia-im/tertulia/pkg/logger"
	"github.com/tertulia-im/tertulia/pkg/metrics"
	"github.com/tertulia-im/tertulia/pkg/middleware"
)

const (
	searchDefaultLimit = 20
	searchMaxLimit     = 100
	searchMaxQuery     = 100
)

// MessagesHandler serves posting, polling, search and message maintenance.
type MessagesHandler struct {
	board *board.Service
}

func NewMessagesHandler(b *board.Service) *MessagesHandler {
	return &MessagesHandler{board: b}
}

// Register mounts the message routes under the given group.
func (h *MessagesHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/messages", h.Post)
	rg.GET("/messages", h.Query)
	rg.GET("/messages/search", h.Search)
	rg.PATCH("/messages/:id", h.Edit)
	rg.DELETE("/messages/:id", h.Delete)
}

type postRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Kind string `json:"kind"`
}

// Post records a new message from the caller.
func (h *MessagesHandler) Post(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, FieldError{Field: "body", Error: "invalid JSON"})
		return
	}

	var fields []FieldError
	from := middleware.Caller(c)
	if from == "" {
		fields = append(fields, FieldError{Field: middleware.CallerHeader, Error: "required"})
	}
	to := sanitize.Name(req.To)
	if to == "" {
		fields = append(fields, FieldError{Field: "to", Error: "required"})
	}
	text := sanitize.Text(req.Text)
	if text == "" {
		fields = append(fields, FieldError{Field: "text", Error: "required"})
	}
	kind := strings.TrimSpace(req.Kind)
	if kind == "" {
		fields = append(fields, FieldError{Field: "kind", Error: "required"})
	}
	if len(fields) > 0 {
		validationFailed(c, fields...)
		return
	}

	m, err := h.board.Post(c.Request.Context(), from, to, text, kind)
	switch {
	case errors.Is(err, board.ErrBadKind):
		validationFailed(c, FieldError{Field: "kind", Error: "must be message or private_message"})
	case errors.Is(err, board.ErrBadRecipient):
		validationFailed(c, FieldError{Field: "to", Error: "direct messages need a named recipient"})
	case errors.Is(err, board.ErrSenderUnknown):
		validationFailed(c, FieldError{Field: "from", Error: "not in the room"})
	case err != nil:
		logger.Errorf("post from %s: %v", from, err)
		storeFailed(c)
	default:
		metrics.MessagesPosted.WithLabelValues(m.Kind).Inc()
		c.JSON(http.StatusCreated, m)
	}
}

// Query returns the messages the caller may see, oldest first, capped at limit.
func (h *MessagesHandler) Query(c *gin.Context) {
	var fields []FieldError
	viewer := middleware.Caller(c)
	if viewer == "" {
		fields = append(fields, FieldError{Field: middleware.CallerHeader, Error: "required"})
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		fields = append(fields, FieldError{Field: "limit", Error: "must be a positive integer"})
	}
	if len(fields) > 0 {
		validationFailed(c, fields...)
		return
	}

	msgs, err := h.board.Visible(c.Request.Context(), viewer, limit)
	if err != nil {
		logger.Errorf("messages for %s: %v", viewer, err)
		storeFailed(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
}

// Search returns the caller's visible messages whose text matches q.
func (h *MessagesHandler) Search(c *gin.Context) {
	viewer := middleware.Caller(c)
	if viewer == "" {
		validationFailed(c, FieldError{Field: middleware.CallerHeader, Error: "required"})
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		validationFailed(c, FieldError{Field: "q", Error: "required"})
		return
	}
	if len(q) > searchMaxQuery {
		validationFailed(c, FieldError{Field: "q", Error: "too long"})
		return
	}
	limit := searchDefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			validationFailed(c, FieldError{Field: "limit", Error: "must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}

	msgs, err := h.board.Search(c.Request.Context(), viewer, q, limit)
	if err != nil {
		logger.Errorf("search for %s: %v", viewer, err)
		storeFailed(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs), "query": q})
}

type editRequest struct {
	Text string `json:"text"`
}

// Edit replaces the text of one of the caller's own messages.
func (h *MessagesHandler) Edit(c *gin.Context) {
	actor := middleware.Caller(c)
	if actor == "" {
		validationFailed(c, FieldError{Field: middleware.CallerHeader, Error: "required"})
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, FieldError{Field: "body", Error: "invalid JSON"})
		return
	}
	text := sanitize.Text(req.Text)
	if text == "" {
		validationFailed(c, FieldError{Field: "text", Error: "required"})
		return
	}

	m, err := h.board.Edit(c.Request.Context(), c.Param("id"), actor, text)
	switch {
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case errors.Is(err, board.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not your message"})
	case err != nil:
		logger.Errorf("edit %s by %s: %v", c.Param("id"), actor, err)
		storeFailed(c)
	default:
		c.JSON(http.StatusOK, m)
	}
}

// Delete removes one of the caller's own messages.
func (h *MessagesHandler) Delete(c *gin.Context) {
	actor := middleware.Caller(c)
	if actor == "" {
		validationFailed(c, FieldError{Field: middleware.CallerHeader, Error: "required"})
		return
	}

	err := h.board.Delete(c.Request.Context(), c.Param("id"), actor)
	switch {
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
	case errors.Is(err, board.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not your message"})
	case err != nil:
		logger.Errorf("delete %s by %s: %v", c.Param("id"), actor, err)
		storeFailed(c)
	default:
		c.Status(http.StatusNoContent)
	}
}
