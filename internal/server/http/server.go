// Package httpserver exposes the auth API as JSON over HTTP.
package httpserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oramahq/authcore/internal/model"
	"github.com/oramahq/authcore/internal/repository"
	"github.com/oramahq/authcore/internal/service"
	"github.com/oramahq/authcore/internal/token"
)

// Server wires services into HTTP handlers.
type Server struct {
	auth   service.AuthService
	users  repository.UserRepository
	issuer *token.Issuer
	log    *zap.Logger
}

// New constructs a server with injected services.
func New(auth service.AuthService, users repository.UserRepository, issuer *token.Issuer, log *zap.Logger) *Server {
	return &Server{auth: auth, users: users, issuer: issuer, log: log}
}

// Router builds the route tree with the middleware chain applied.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.log), Logging(s.log))

	r.GET("/healthz", s.health)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refresh)
	auth.POST("/logout", s.logout)
	auth.POST("/forgot-password", s.forgotPassword)
	auth.POST("/reset-password", s.resetPassword)
	auth.POST("/change-password", Authenticate(s.issuer), s.changePassword)

	users := api.Group("/users", Authenticate(s.issuer))
	users.GET("/:id", s.getUser)
	users.POST("/:id/deactivate", RequireRole(model.RoleAdmin), s.deactivate)

	return r
}
