package api

import (
	"net/http"
	"time"

	"tradeos-core/internal/monitor"
	"tradeos-core/internal/session"
	"tradeos-core/pkg/cache"
	"tradeos-core/pkg/db"

	"github.com/gin-gonic/gin"
)

// Server wires HTTP endpoints around the session registry.
type Server struct {
	Router    *gin.Engine
	Registry  *session.Registry
	DB        *db.Database
	Metrics   *monitor.SystemMetrics
	JWTSecret string
	Meta      SystemMeta

	startedAt time.Time
	wsClients int64
	lbCache   *cache.Sharded[[]leaderboardEntry]
}

// SystemMeta describes runtime status exposed to clients.
type SystemMeta struct {
	Version    string
	InstanceID string
	Language   string
	Difficulty string
}

func NewServer(registry *session.Registry, database *db.Database, metrics *monitor.SystemMetrics, meta SystemMeta, jwtSecret string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		Registry:  registry,
		DB:        database,
		Metrics:   metrics,
		JWTSecret: jwtSecret,
		Meta:      meta,
		startedAt: time.Now(),
		lbCache:   cache.NewSharded[[]leaderboardEntry](),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.GET("/system/status", s.getSystemStatus)
		api.GET("/metrics", s.getMetrics)
		api.GET("/leaderboard", s.getLeaderboard)
		api.POST("/feed/start", s.startFeed)

		// Auth endpoints (no auth required)
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.registerUser)
			auth.POST("/login", s.loginUser)
		}

		// Protected API: the session is keyed by the authenticated user.
		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.POST("/session/start", s.startSession)
			protected.POST("/session/reset", s.resetSession)
			protected.GET("/state", s.getState)
			protected.GET("/signals", s.getSignals)

			protected.POST("/trade/buy", s.tradeBuy)
			protected.POST("/trade/sell", s.tradeSell)
			protected.POST("/trade/panic", s.tradePanic)

			protected.GET("/user/points", s.getUserPoints)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
