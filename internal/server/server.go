// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

// Package server exposes the dashboard view state over a gin JSON API and
// an SSE stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/newsdeck/internal/feed"
	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/realtime"
	"github.com/jdfalk/newsdeck/internal/server/middleware"
	"github.com/jdfalk/newsdeck/internal/sports"
	"github.com/jdfalk/newsdeck/internal/weather"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the health endpoint.
var Version = "dev"

// Deps are the core components the HTTP surface exposes. Any of them may be
// nil; the matching routes answer 503.
type Deps struct {
	Feed       *feed.Orchestrator
	News       *news.Client
	Weather    *weather.Client
	Sports     *sports.Tracker
	Hub        *realtime.EventHub
	Supervisor *operations.Supervisor
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port              string
	Host              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	RateLimitPerMin   int
	RateBurst         int
	MaxBodyBytes      int64
	HeartbeatInterval time.Duration
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	deps       Deps
	cfg        ServerConfig
	started    time.Time
}

// NewServer builds the router and bridges component changes to the hub.
func NewServer(deps Deps, cfg ServerConfig) *Server {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(corsMiddleware())

	metrics.Register()

	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 5 * time.Second
	}

	s := &Server{
		router:  router,
		deps:    deps,
		cfg:     cfg,
		started: time.Now(),
	}
	s.bridge()
	s.setupRoutes()
	return s
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start serves until SIGINT/SIGTERM or ctx is done, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port),
		Handler:        s.router,
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go s.heartbeat(ctx)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Println("[INFO] Shutting down server...")
	if s.deps.Hub != nil {
		s.deps.Hub.Broadcast(&realtime.Event{
			Type:      realtime.EventSystemStatus,
			Timestamp: time.Now(),
			Data:      map[string]any{"message": "Server is shutting down"},
		})
		time.Sleep(500 * time.Millisecond)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("[INFO] Server exited")
	return nil
}

// heartbeat pushes runtime stats as system.status events and gauges.
func (s *Server) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publishStatus()
		}
	}
}

func (s *Server) publishStatus() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	metrics.SetMemoryAlloc(mem.Alloc)
	metrics.SetGoroutines(goroutines)

	if s.deps.Hub == nil {
		return
	}
	active := 0
	if s.deps.Supervisor != nil {
		active = len(s.deps.Supervisor.Active())
	}
	s.deps.Hub.SendSystemStatus(map[string]any{
		"memory_alloc": mem.Alloc,
		"goroutines":   goroutines,
		"active_tasks": active,
		"sse_clients":  s.deps.Hub.GetClientCount(),
		"timestamp":    time.Now().Unix(),
	})
}

// bridge forwards accepted view changes and task lifecycle to the hub.
func (s *Server) bridge() {
	hub := s.deps.Hub
	if hub == nil {
		return
	}
	if s.deps.Feed != nil {
		s.deps.Feed.OnChange(func(st feed.State) {
			hub.Publish(realtime.EventFeedUpdated, realtime.TopicFeed, FeedResponse{State: st, Groups: feed.Groups(st.Articles)})
		})
	}
	if s.deps.Weather != nil {
		s.deps.Weather.OnChange(func(v weather.View) {
			hub.Publish(realtime.EventWeatherUpdated, realtime.TopicWeather, v)
		})
	}
	if s.deps.Sports != nil {
		s.deps.Sports.OnChange(func(st sports.State) {
			hub.Publish(realtime.EventSportsUpdated, realtime.TopicSports, st)
		})
	}
	if s.deps.Supervisor != nil {
		s.deps.Supervisor.AddListener(func(ts operations.TaskStatus) {
			hub.Publish(realtime.EventTaskStatus, realtime.TopicTasks, ts)
		})
	}
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)
	s.router.GET("/api/events", s.handleEvents)

	api := s.router.Group("/api/v1")
	api.Use(middleware.NewIPRateLimiter(s.cfg.RateLimitPerMin, s.cfg.RateBurst).Middleware())
	api.Use(middleware.MaxRequestBodySize(s.cfg.MaxBodyBytes))
	{
		api.GET("/feed", s.getFeed)
		api.PUT("/feed/selection", s.putFeedSelection)
		api.PUT("/feed/sort", s.putFeedSort)
		api.POST("/feed/refresh", s.refreshFeed)
		api.GET("/feed/filter", s.filterFeed)
		api.GET("/feed.rss", s.feedRSS)
		api.GET("/search", s.search)

		api.POST("/articles/read", s.readArticle)
		api.POST("/articles/synthesize", s.synthesize)

		api.GET("/weather", s.getWeather)
		api.POST("/weather/refresh", s.refreshWeather)

		api.GET("/sports", s.getSports)
		api.GET("/sports/leagues", s.listLeagues)
		api.PUT("/sports/selection", s.putSportsSelection)
		api.POST("/sports/refresh", s.refreshSports)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	resp := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   Version,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}
	if s.deps.Supervisor != nil {
		resp["generations"] = s.deps.Supervisor.Generations()
		resp["active_tasks"] = s.deps.Supervisor.Active()
	}
	if s.deps.Hub != nil {
		resp["sse_clients"] = s.deps.Hub.GetClientCount()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEvents(c *gin.Context) {
	if s.deps.Hub == nil {
		RespondWithServiceUnavailable(c, "event hub")
		return
	}
	s.deps.Hub.HandleSSE(c)
}
