package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/perchhq/perch/internal/domain"
)

const sessionTTL = 24 * time.Hour

// identityUsecaser is the subset of IdentityUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type identityUsecaser interface {
	Signup(ctx context.Context, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

type reauthRequester interface {
	Request(ctx context.Context, userID int64, password string) (string, time.Time, error)
}

type AuthHandler struct {
	identity identityUsecaser
	reauth   reauthRequester
	jwtKey   []byte
	logger   *slog.Logger
}

func NewAuthHandler(identity identityUsecaser, reauth reauthRequester, jwtKey []byte, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		reauth:   reauth,
		jwtKey:   jwtKey,
		logger:   logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Signup(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUsernameTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errUsernameTaken})
		case errors.Is(err, domain.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": errEmailTaken})
		default:
			h.logger.Error("signup", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	token, err := h.issueSession(user.ID)
	if err != nil {
		h.logger.Error("issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(user)})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /auth/login
// Unknown user and wrong password both answer 401 with the same message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.identity.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.Error("login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	token, err := h.issueSession(user.ID)
	if err != nil {
		h.logger.Error("issue session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}

type reauthRequest struct {
	Password string `json:"password" binding:"required"`
}

type reauthResponse struct {
	ReauthToken string    `json:"reauth_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// POST /auth/reauth
// Trades the caller's password for a short-lived single-use token that
// unlocks profile edits and account deletion.
func (h *AuthHandler) Reauth(c *gin.Context) {
	var req reauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")

	raw, expiresAt, err := h.reauth.Request(c.Request.Context(), userID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		case errors.Is(err, domain.ErrUserNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		default:
			h.logger.Error("reauth request", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.JSON(http.StatusOK, reauthResponse{ReauthToken: raw, ExpiresAt: expiresAt})
}

func (h *AuthHandler) issueSession(userID int64) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	})
	return token.SignedString(h.jwtKey)
}
