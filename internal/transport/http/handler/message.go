package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perchhq/perch/internal/domain"
)

type messageUsecaser interface {
	Post(ctx context.Context, userID int64, text string) (*domain.Message, error)
	Get(ctx context.Context, id int64) (*domain.Message, error)
	Delete(ctx context.Context, id, ownerID int64) error
}

type engagementUsecaser interface {
	Like(ctx context.Context, userID, messageID int64) (bool, error)
	Unlike(ctx context.Context, userID, messageID int64) (bool, error)
}

type MessageHandler struct {
	messages   messageUsecaser
	engagement engagementUsecaser
	logger     *slog.Logger
}

func NewMessageHandler(messages messageUsecaser, engagement engagementUsecaser, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		messages:   messages,
		engagement: engagement,
		logger:     logger.With("component", "message_handler"),
	}
}

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// POST /messages
func (h *MessageHandler) Post(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")

	msg, err := h.messages.Post(c.Request.Context(), userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMessageEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": errMessageEmpty})
		case errors.Is(err, domain.ErrMessageTooLong):
			c.JSON(http.StatusBadRequest, gin.H{"error": errMessageTooLong})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("post message", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// GET /messages/:id
func (h *MessageHandler) GetByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
		return
	}

	msg, err := h.messages.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
			return
		}
		h.logger.Error("get message", "message_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toMessageResponse(msg))
}

// DELETE /messages/:id
// Only the author can delete. A message owned by someone else reads as
// not found so the route does not leak message ownership.
func (h *MessageHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
		return
	}

	userID := c.GetInt64("userID")

	if err := h.messages.Delete(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
			return
		}
		h.logger.Error("delete message", "message_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

// POST /messages/:id/like
func (h *MessageHandler) Like(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
		return
	}

	userID := c.GetInt64("userID")

	already, err := h.engagement.Like(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfLike):
			c.JSON(http.StatusBadRequest, gin.H{"error": errSelfLike})
		case errors.Is(err, domain.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
		default:
			h.logger.Error("like", "user_id", userID, "message_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	status := "liked"
	if already {
		status = "already_liked"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DELETE /messages/:id/like
func (h *MessageHandler) Unlike(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errMessageNotFound})
		return
	}

	userID := c.GetInt64("userID")

	was, err := h.engagement.Unlike(c.Request.Context(), userID, id)
	if err != nil {
		h.logger.Error("unlike", "user_id", userID, "message_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	status := "unliked"
	if !was {
		status = "not_liked"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}
