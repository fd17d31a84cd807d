package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/perchhq/perch/internal/domain"
)

type socialUsecaser interface {
	Follow(ctx context.Context, followerID, followedID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID int64) (bool, error)
	IsFollowing(ctx context.Context, a, b int64) (bool, error)
	IsFollowedBy(ctx context.Context, a, b int64) (bool, error)
}

type SocialHandler struct {
	social socialUsecaser
	logger *slog.Logger
}

func NewSocialHandler(social socialUsecaser, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{social: social, logger: logger.With("component", "social_handler")}
}

// POST /users/:id/follow
// Repeating an existing follow is a no-op, reported in the body rather
// than as an error status.
func (h *SocialHandler) Follow(c *gin.Context) {
	followedID, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	followerID := c.GetInt64("userID")

	already, err := h.social.Follow(c.Request.Context(), followerID, followedID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": errSelfFollow})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("follow", "follower_id", followerID, "followed_id", followedID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	status := "following"
	if already {
		status = "already_following"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// DELETE /users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	followedID, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	followerID := c.GetInt64("userID")

	was, err := h.social.Unfollow(c.Request.Context(), followerID, followedID)
	if err != nil {
		h.logger.Error("unfollow", "follower_id", followerID, "followed_id", followedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	status := "unfollowed"
	if !was {
		status = "not_following"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GET /users/:id/follow
// Reports the relationship between the caller and :id in both directions.
func (h *SocialHandler) Relationship(c *gin.Context) {
	otherID, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	callerID := c.GetInt64("userID")

	following, err := h.social.IsFollowing(c.Request.Context(), callerID, otherID)
	if err != nil {
		h.logger.Error("relationship", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	followedBy, err := h.social.IsFollowedBy(c.Request.Context(), callerID, otherID)
	if err != nil {
		h.logger.Error("relationship", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": following, "followed_by": followedBy})
}
