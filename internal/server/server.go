package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"rabbit-admin/api"
	"rabbit-admin/internal/config"
	"rabbit-admin/internal/middleware"
)

type Server struct {
	engine *gin.Engine
	cfg    config.Config
}

func New(cfg config.Config, deps api.Deps) *Server {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.SecureHeaders(),
		middleware.CORS(cfg.Origins),
		middleware.Timeout(30*time.Second),
	)

	api.RegisterRoutes(r, deps)

	return &Server{
		engine: r,
		cfg:    cfg,
	}
}

func (s *Server) Start() error {
	return s.engine.Run(s.cfg.Addr())
}

// Engine returns the underlying Gin engine (for testing)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
