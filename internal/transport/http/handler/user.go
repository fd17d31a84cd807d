package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/perchhq/perch/internal/domain"
	"github.com/perchhq/perch/internal/usecase"
)

const reauthHeader = "X-Reauth-Token"

type userUsecaser interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Search(ctx context.Context, q string, limit int) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input usecase.UpdateProfileInput) (*domain.User, error)
	SetPassword(ctx context.Context, userID int64, current, next string) error
	DeleteAccount(ctx context.Context, userID int64) error
}

type followLister interface {
	Followers(ctx context.Context, userID int64) ([]domain.User, error)
	Following(ctx context.Context, userID int64) ([]domain.User, error)
}

type likeLister interface {
	LikedMessageIDs(ctx context.Context, userID int64) ([]int64, error)
}

type reauthConsumer interface {
	CheckAndConsume(ctx context.Context, rawToken string) (int64, error)
}

type UserHandler struct {
	users   userUsecaser
	follows followLister
	likes   likeLister
	reauth  reauthConsumer
	logger  *slog.Logger
}

func NewUserHandler(users userUsecaser, follows followLister, likes likeLister, reauth reauthConsumer, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		follows: follows,
		likes:   likes,
		reauth:  reauth,
		logger:  logger.With("component", "user_handler"),
	}
}

// GET /users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("get user", "user_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// GET /users?q=<fragment>&limit=<n>
func (h *UserHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	users, err := h.users.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.logger.Error("search users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": toUserResponses(users)})
}

// GET /users/:id/followers
func (h *UserHandler) Followers(c *gin.Context) {
	h.listRelated(c, h.follows.Followers)
}

// GET /users/:id/following
func (h *UserHandler) Following(c *gin.Context) {
	h.listRelated(c, h.follows.Following)
}

func (h *UserHandler) listRelated(c *gin.Context, list func(context.Context, int64) ([]domain.User, error)) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	users, err := list(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("list related users", "user_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": toUserResponses(users)})
}

// GET /users/:id/likes
func (h *UserHandler) Likes(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		return
	}

	ids, err := h.likes.LikedMessageIDs(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("list liked messages", "user_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message_ids": ids})
}

type updateProfileRequest struct {
	Username       string  `json:"username"  binding:"required,min=1,max=50"`
	Email          string  `json:"email"     binding:"required,email"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
	ImageURL       string  `json:"image_url"        binding:"omitempty,max=2048"`
	HeaderImageURL string  `json:"header_image_url" binding:"omitempty,max=2048"`
}

// PATCH /me
// Requires a fresh reauth token in X-Reauth-Token. The token is consumed
// whether or not the edit succeeds.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := c.GetInt64("userID")
	if !h.consumeReauth(c, userID) {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, usecase.UpdateProfileInput{
		Username:       req.Username,
		Email:          req.Email,
		Bio:            req.Bio,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		HeaderImageURL: req.HeaderImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errUsernameTaken})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("update profile", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required,min=6"`
}

// PUT /me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")

	if err := h.users.SetPassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
		default:
			h.logger.Error("change password", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// DELETE /me
// Requires a fresh reauth token. Removes the account and everything
// attached to it.
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID := c.GetInt64("userID")
	if !h.consumeReauth(c, userID) {
		return
	}

	if err := h.users.DeleteAccount(c.Request.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.Error("delete account", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.Status(http.StatusNoContent)
}

// consumeReauth claims the X-Reauth-Token header for userID. On failure it
// writes the response and returns false. A token issued to another user is
// still consumed but never unlocks this user's operation.
func (h *UserHandler) consumeReauth(c *gin.Context, userID int64) bool {
	raw := c.GetHeader(reauthHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errReauthMissing})
		return false
	}

	tokenUserID, err := h.reauth.CheckAndConsume(c.Request.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReauthExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errReauthExpired})
		case errors.Is(err, domain.ErrReauthMissing):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errReauthMissing})
		default:
			h.logger.Error("consume reauth token", "user_id", userID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return false
	}

	if tokenUserID != userID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errReauthMissing})
		return false
	}

	return true
}

func paramID(c *gin.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
