package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate dependencies
	health := NewHealthController(cfg.Database, cfg.Version)
	libraryController := NewLibraryController(cfg.Library, cfg.Annotations, cfg.Bus, cfg.TaskClient)
	readingController := NewReadingController(cfg.Library, cfg.Bus)
	highlightsController := NewHighlightsController(cfg.Library, cfg.Annotations, cfg.ReaderService, cfg.Bus)
	preferencesController := NewPreferencesController(cfg.Preferences)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Library endpoints
	router.GET("/api/documents", libraryController.ListDocuments)
	router.POST("/api/documents", libraryController.RegisterDocument)
	router.GET("/api/documents/:id", libraryController.GetDocument)
	router.DELETE("/api/documents/:id", libraryController.DeleteDocument)

	// Reading endpoints
	router.GET("/api/documents/:id/position", readingController.GetPosition)
	router.PUT("/api/documents/:id/position", readingController.SetPosition)
	router.GET("/api/documents/:id/outline", readingController.GetOutline)

	// Highlights panel endpoints
	router.GET("/api/documents/:id/highlights", highlightsController.ListGroups)
	router.POST("/api/documents/:id/highlights", highlightsController.AddAnnotation)
	router.POST("/api/documents/:id/highlights/groups/delete", highlightsController.DeleteGroup)
	router.DELETE("/api/annotations/:id", highlightsController.DeleteAnnotation)
	router.PUT("/api/annotations/:id/note", highlightsController.SetNote)

	// Preference endpoints
	router.GET("/api/preferences/:key", preferencesController.GetPreference)
	router.PUT("/api/preferences/:key", preferencesController.SetPreference)
	router.DELETE("/api/preferences/:key", preferencesController.DeletePreference)

	return router
}
