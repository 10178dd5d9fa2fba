package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	// Health endpoints
	var queue Pinger
	if cfg.TaskClient != nil {
		queue = cfg.TaskClient
	}
	health := NewHealthController(cfg.Database, queue, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group("/api")

	// Category endpoints
	if cfg.Categories != nil {
		categories := NewCategoriesController(cfg.Categories, cfg.TaskClient)
		api.GET("/categories", categories.List)
		api.POST("/categories", categories.Create)
		api.PUT("/categories/positions", categories.SetPositions)
		api.POST("/categories/normalize", categories.Normalize)
		api.PATCH("/categories/:name", categories.Rename)
		api.DELETE("/categories/:name", categories.Delete)
		api.POST("/categories/:name/swap", categories.Swap)
	}

	// Library and book endpoints
	if cfg.Books != nil {
		booksController := NewBooksController(cfg.Books)
		api.GET("/library", booksController.Library)
		api.GET("/categories/:name/books", booksController.Category)
		api.POST("/books", booksController.Create)
		api.GET("/books/:id", booksController.Get)
		api.DELETE("/books/:id", booksController.Delete)
	}

	// Task status endpoint
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
