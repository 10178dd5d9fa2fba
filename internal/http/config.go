package http

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database   *database.Database
	Categories CategoryAPI
	Books      BookStore

	// Authentication (nil injects auth.DefaultUserID)
	AuthMiddleware *auth.Middleware

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}
