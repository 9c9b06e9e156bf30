package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/wpup/conauth/internal/transport/http/handler"
	"github.com/wpup/conauth/internal/transport/http/middleware"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, loginHandler *handler.LoginHandler, jwtKey []byte) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	auth := r.Group("/auth")
	auth.POST("/login", loginHandler.RequestLoginLink)
	auth.GET("/verify", loginHandler.Verify)

	// Session-protected routes
	r.GET("/me", middleware.Auth(jwtKey), handler.Me)

	return r
}
