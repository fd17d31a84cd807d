package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/perchhq/perch/internal/transport/http/handler"
	"github.com/perchhq/perch/internal/transport/http/middleware"
)

func NewRouter(
	logger *slog.Logger,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	socialHandler *handler.SocialHandler,
	messageHandler *handler.MessageHandler,
	feedHandler *handler.FeedHandler,
	jwtKey []byte,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	r.POST("/auth/signup", authHandler.Signup)
	r.POST("/auth/login", authHandler.Login)

	authMW := middleware.Auth(jwtKey)

	authed := r.Group("/", authMW)
	authed.POST("/auth/reauth", authHandler.Reauth)

	authed.GET("/users", userHandler.Search)
	authed.GET("/users/:id", userHandler.GetByID)
	authed.GET("/users/:id/followers", userHandler.Followers)
	authed.GET("/users/:id/following", userHandler.Following)
	authed.GET("/users/:id/likes", userHandler.Likes)
	authed.GET("/users/:id/messages", feedHandler.UserMessages)
	authed.GET("/users/:id/follow", socialHandler.Relationship)
	authed.POST("/users/:id/follow", socialHandler.Follow)
	authed.DELETE("/users/:id/follow", socialHandler.Unfollow)

	// Self routes live under /me: gin's tree rejects a static /users/me
	// next to the /users/:id wildcard.
	authed.PATCH("/me", userHandler.UpdateMe)
	authed.DELETE("/me", userHandler.DeleteMe)
	authed.PUT("/me/password", userHandler.ChangePassword)

	authed.POST("/messages", messageHandler.Post)
	authed.GET("/messages/:id", messageHandler.GetByID)
	authed.DELETE("/messages/:id", messageHandler.Delete)
	authed.POST("/messages/:id/like", messageHandler.Like)
	authed.DELETE("/messages/:id/like", messageHandler.Unlike)

	authed.GET("/feed", feedHandler.Feed)
	authed.GET("/timeline", feedHandler.Timeline)

	return r
}
