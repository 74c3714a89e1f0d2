package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Counter, cfg.Version)
	booksController := NewBooksController(cfg.Records, cfg.Deletions)
	sessionsController := NewSessionsController(cfg.Sessions)
	selectionController := NewSelectionController(cfg.Records, cfg.Deletions)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	if cfg.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	// Books API endpoints
	router.GET("/api/books", booksController.GetAllBooks)
	router.GET("/api/books/:id", booksController.GetBook)
	router.DELETE("/api/books/:id", booksController.DeleteBook)

	if cfg.CoverCache != nil {
		coversController := NewCoversController(cfg.CoverCache, cfg.Records)
		router.GET("/api/books/:id/cover", coversController.GetCover)
	}

	// Scan sessions
	router.POST("/api/sessions", sessionsController.CreateSession)
	router.DELETE("/api/sessions/:sid", sessionsController.DeleteSession)

	session := router.Group("/api/sessions/:sid", sessionsController.LoadSession)
	session.GET("/scan", sessionsController.GetScan)
	session.POST("/scan", sessionsController.Detect)
	session.PUT("/mode", sessionsController.SetMode)
	session.POST("/reset", sessionsController.Reset)
	session.POST("/save", sessionsController.SaveCurrent)
	session.POST("/save-buffer", sessionsController.SaveBuffer)

	session.GET("/selection", selectionController.GetSelection)
	session.DELETE("/selection", selectionController.Clear)
	session.POST("/selection/delete", selectionController.DeleteSelected)
	session.POST("/selection/:id", selectionController.Toggle)

	return router
}
