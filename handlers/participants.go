package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tertulia-im/tertulia/internal/board"
	"github.com/tertulia-im/tertulia/internal/directory"
	"github.com/tertulia-im/tertulia/internal/sanitize"
	"github.com/tertulia-im/tertulia/pkg/logger"
	"github.com/tertulia-im/tertulia/pkg/metrics"
	"github.com/tertulia-im/tertulia/pkg/middleware"
)

// JoinNotice is posted to the room whenever a participant registers.
const JoinNotice = "joined the room"

// ParticipantsHandler serves registration, presence listing and heartbeats.
type ParticipantsHandler struct {
	directory *directory.Service
	board     *board.Service
}

func NewParticipantsHandler(d *directory.Service, b *board.Service) *ParticipantsHandler {
	return &ParticipantsHandler{directory: d, board: b}
}

// Register mounts the participant routes under the given group.
func (h *ParticipantsHandler) Register(rg *gin.RouterGroup) {
	rg.POST("/participants", h.Join)
	rg.GET("/participants", h.List)
	rg.POST("/heartbeat", h.Heartbeat)
}

type joinRequest struct {
	Name string `json:"name"`
}

// Join registers a new participant and announces the arrival to the room.
func (h *ParticipantsHandler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, FieldError{Field: "body", Error: "invalid JSON"})
		return
	}

	name := sanitize.Name(req.Name)
	if name == "" {
		validationFailed(c, FieldError{Field: "name", Error: "required"})
		return
	}

	p, err := h.directory.Join(c.Request.Context(), name)
	switch {
	case errors.Is(err, directory.ErrReservedName):
		validationFailed(c, FieldError{Field: "name", Error: "reserved"})
	case errors.Is(err, directory.ErrAlreadyJoined):
		c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
	case err != nil:
		logger.Errorf("join %s: %v", name, err)
		storeFailed(c)
	default:
		metrics.ParticipantsJoined.Inc()
		// The arrival notice is best effort: the registration already stands.
		if _, nerr := h.board.PostStatus(c.Request.Context(), name, JoinNotice); nerr != nil {
			logger.Warnf("join notice for %s: %v", name, nerr)
		}
		c.JSON(http.StatusCreated, p)
	}
}

// List returns everyone currently in the room.
func (h *ParticipantsHandler) List(c *gin.Context) {
	list, err := h.directory.ListActive(c.Request.Context())
	if err != nil {
		logger.Errorf("list participants: %v", err)
		storeFailed(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list, "count": len(list)})
}

// Heartbeat refreshes the caller's last-seen timestamp.
func (h *ParticipantsHandler) Heartbeat(c *gin.Context) {
	name := middleware.Caller(c)
	if name == "" {
		validationFailed(c, FieldError{Field: middleware.CallerHeader, Error: "required"})
		return
	}

	err := h.directory.Heartbeat(c.Request.Context(), name)
	switch {
	case errors.Is(err, directory.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not in the room"})
	case err != nil:
		logger.Errorf("heartbeat %s: %v", name, err)
		storeFailed(c)
	default:
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}
