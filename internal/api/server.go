package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/video-vault/internal/config"
	"github.com/video-vault/internal/models"
)

// Store is the catalog persistence surface the server depends on.
type Store interface {
	ListVideos(query models.ListQuery) (*models.VideoPage, error)
	LabelIndex() (*models.LabelIndex, error)
	CreateVideo(fields *models.VideoFields) (*models.Video, error)
	UpdateVideo(id string, fields *models.VideoFields) (*models.Video, error)
	DeleteVideo(id string) error
}

// Server represents the API server
type Server struct {
	router *gin.Engine
	store  Store
	cfg    *config.Config
	lookup *LookupClient
	log    *zap.Logger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, store Store, log *zap.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:3001", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Pragma"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	server := &Server{
		router: router,
		store:  store,
		cfg:    cfg,
		log:    log,
	}
	if cfg.YouTubeAPIKey != "" {
		server.lookup = NewLookupClient(cfg.YouTubeAPIKey)
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures all the routes for the server
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	// Prometheus metrics
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public catalog endpoints
	s.router.GET("/videos", s.listVideos)
	s.router.GET("/videos/meta", s.getMeta)
	s.router.POST("/videos/verify-password", s.verifyPassword)

	// Admin endpoints
	admin := s.router.Group("/", s.adminRequired())
	admin.POST("/videos", s.createVideo)
	admin.PUT("/videos/:id", s.updateVideo)
	admin.DELETE("/videos/:id", s.deleteVideo)
	admin.GET("/videos/lookup", s.lookupVideo)
}

// loggingMiddleware logs one line per request with status and latency.
func loggingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// adminRequired gates mutation endpoints behind the shared admin secret.
// When no secret is configured every request is rejected.
func (s *Server) adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		candidate := c.GetHeader("Authorization")
		if s.cfg.AdminPassword == "" || subtle.ConstantTimeCompare([]byte(candidate), []byte(s.cfg.AdminPassword)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// listVideos handles GET /videos
func (s *Server) listVideos(c *gin.Context) {
	query := models.ListQuery{
		Page:   1,
		Limit:  models.DefaultPageSize,
		Label:  c.Query("label"),
		Search: c.Query("s"),
	}
	if page := c.Query("page"); page != "" {
		if n, err := strconv.Atoi(page); err == nil && n > 0 {
			query.Page = n
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			query.Limit = n
		}
	}

	page, err := s.store.ListVideos(query)
	if err != nil {
		s.fail(c, err, "Failed to fetch videos")
		return
	}
	c.JSON(http.StatusOK, page)
}

// getMeta handles GET /videos/meta
func (s *Server) getMeta(c *gin.Context) {
	index, err := s.store.LabelIndex()
	if err != nil {
		s.fail(c, err, "Failed to fetch meta")
		return
	}
	c.JSON(http.StatusOK, index)
}

// createVideo handles POST /videos
func (s *Server) createVideo(c *gin.Context) {
	var fields models.VideoFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	video, err := s.store.CreateVideo(&fields)
	if err != nil {
		s.fail(c, err, "Failed to create video")
		return
	}
	c.JSON(http.StatusOK, video)
}

// updateVideo handles PUT /videos/:id
func (s *Server) updateVideo(c *gin.Context) {
	var fields models.VideoFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	video, err := s.store.UpdateVideo(c.Param("id"), &fields)
	if err != nil {
		s.fail(c, err, "Failed to update video")
		return
	}
	c.JSON(http.StatusOK, video)
}

// deleteVideo handles DELETE /videos/:id
func (s *Server) deleteVideo(c *gin.Context) {
	if err := s.store.DeleteVideo(c.Param("id")); err != nil {
		s.fail(c, err, "Failed to delete video")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// verifyPassword handles POST /videos/verify-password
func (s *Server) verifyPassword(c *gin.Context) {
	var body struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if s.cfg.AdminPassword == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server misconfigured"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.AdminPassword)) == 1 {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password"})
}

// lookupVideo handles GET /videos/lookup. It prefills entry fields from a
// YouTube URL when a Data API key is configured.
func (s *Server) lookupVideo(c *gin.Context) {
	if s.lookup == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Lookup is not configured"})
		return
	}

	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter is required"})
		return
	}

	prefill, err := s.lookup.Lookup(c.Request.Context(), rawURL)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
			return
		}
		if errors.Is(err, ErrUnsupportedURL) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.fail(c, err, "Failed to look up video")
		return
	}
	c.JSON(http.StatusOK, prefill)
}

// fail maps store errors onto HTTP statuses. Unexpected errors are logged
// and answered with a generic body only.
func (s *Server) fail(c *gin.Context, err error, generic string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
	default:
		s.log.Error(generic, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}

// Start starts the server on the specified port
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
