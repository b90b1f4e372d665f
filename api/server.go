package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Aidin1998/bookshelf/api/responses"
	"github.com/Aidin1998/bookshelf/common/apiutil"
	"github.com/Aidin1998/bookshelf/internal/books"
	"github.com/Aidin1998/bookshelf/internal/config"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	// Registers the OpenAPI document served by gin-swagger
	_ "github.com/Aidin1998/bookshelf/docs"
)

// WelcomeMessage is the body of GET /
const WelcomeMessage = "Welcome to mongodb API"

const healthTimeout = 2 * time.Second

// Server represents the API server
type Server struct {
	router *gin.Engine
	logger *zap.Logger
	books  books.BookService
	cfg    config.Config
}

// NewServer creates a new API server backed by the given book service
func NewServer(logger *zap.Logger, svc books.BookService, cfg config.Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		logger: logger,
		books:  svc,
		cfg:    cfg,
	}

	apiutil.UseJSONFieldNames()

	router := gin.New()

	// Add middleware
	router.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(logger, true))
	if cfg.Tracing.Enabled {
		router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	router.Use(apiutil.RequestIDMiddleware())
	if cfg.Metrics.Enabled {
		router.Use(apiutil.MetricsMiddleware())
	}

	// Configure CORS
	corsConfig := cors.Config{
		AllowOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", apiutil.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Location", apiutil.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 || (len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*") {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.NoRoute(func(c *gin.Context) {
		responses.NotFound(c, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
	})

	server.router = router
	server.registerRoutes()
	return server
}

// Router returns the internal Gin engine for testing purposes
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Handler returns the server as an http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/", s.welcome)
	s.router.GET("/health", s.healthCheck)

	if s.cfg.Metrics.Enabled {
		s.router.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	if s.cfg.Docs.Enabled {
		docsPath := strings.TrimSuffix(s.cfg.Docs.Path, "/")
		s.router.GET(docsPath+"/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	bookRoutes := s.router.Group("/api/books")
	{
		bookRoutes.GET("", s.listBooks)
		bookRoutes.GET("/:id", s.getBook)
		bookRoutes.POST("", s.createBook)
		bookRoutes.POST("/addBook", s.addBook)
		bookRoutes.PUT("/:id", s.updateBook)
		bookRoutes.DELETE("/:id", s.deleteBook)
	}
}

// welcome godoc
// @Summary      Welcome message
// @Tags         System
// @Produce      plain
// @Success      200  {string}  string  "Welcome to mongodb API"
// @Router       / [get]
func (s *Server) welcome(c *gin.Context) {
	responses.Text(c, http.StatusOK, WelcomeMessage)
}

// healthCheck godoc
// @Summary      Health check
// @Description  Reports whether the book store answers a ping
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errors.ProblemDetails
// @Router       /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := s.books.Ping(ctx); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		responses.ServiceUnavailable(c, "book store is unreachable")
		return
	}
	responses.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
