// Package auth resolves the user on whose behalf an API request runs.
//
// It supports two modes:
//   - "none": No authentication required (default), all requests use DefaultUserID
//   - "token": Per-user API tokens sent as "Authorization: Bearer <token>"
//
// # Configuration
//
//	AUTH_MODE=none   # Default, single-user
//	AUTH_MODE=token  # Users are created with "bookshelf create-user"
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authMiddleware := auth.NewMiddleware(usersRepo, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract the owner in handlers:
//
//	userID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
package auth
