package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/transport/http/handler"
	"docuchat/internal/transport/http/middleware"
)

type RouterConfig struct {
	GinMode   string
	JWTSecret string

	AuthHandler   *handler.AuthHandler
	FileHandler   *handler.FileHandler
	ChatHandler   *handler.ChatHandler
	HealthHandler *handler.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", cfg.HealthHandler.Health)

		auth := api.Group("/auth")
		{
			auth.POST("/register", cfg.AuthHandler.Register)
			auth.POST("/login", cfg.AuthHandler.Login)
		}

		authed := api.Group("")
		authed.Use(middleware.AuthJWT(cfg.JWTSecret))
		{
			authed.POST("/upload", cfg.FileHandler.Upload)
			authed.GET("/files", cfg.FileHandler.List)
			authed.DELETE("/files/:id", cfg.FileHandler.Delete)
			authed.POST("/process", cfg.FileHandler.Process)

			authed.POST("/chat", cfg.ChatHandler.Chat)
			authed.GET("/history", cfg.ChatHandler.History)
			authed.DELETE("/history", cfg.ChatHandler.ClearHistory)
			authed.DELETE("/history/:id", cfg.ChatHandler.DeleteEntry)

			authed.GET("/user/status", cfg.ChatHandler.Status)
		}
	}

	return r
}

type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, router *gin.Engine) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
