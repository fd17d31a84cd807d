package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/perchhq/perch/internal/domain"
)

type feedUsecaser interface {
	Feed(ctx context.Context, userID int64, limit, offset int) ([]domain.Message, error)
}

type timelineUsecaser interface {
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Message, error)
}

type FeedHandler struct {
	feed     feedUsecaser
	timeline timelineUsecaser
	logger   *slog.Logger
}

func NewFeedHandler(feed feedUsecaser, timeline timelineUsecaser, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{feed: feed, timeline: timeline, logger: logger.With("component", "feed_handler")}
}

// GET /feed?limit=&offset=
// The caller's own messages merged with those of everyone they follow,
// newest first.
func (h *FeedHandler) Feed(c *gin.Context) {
	userID := c.GetInt64("userID")
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	msgs, err := h.feed.Feed(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("feed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs)})
}

// GET /timeline?limit=
// Global newest-first view across all users.
func (h *FeedHandler) Timeline(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	msgs, err := h.timeline.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("timeline", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs)})
}

// GET /users/:id/messages?limit=
func (h *FeedHandler) UserMessages(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	msgs, err := h.timeline.ListByUser(c.Request.Context(), id, limit)
	if err != nil {
		h.logger.Error("user messages", "user_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toMessageResponses(msgs)})
}
