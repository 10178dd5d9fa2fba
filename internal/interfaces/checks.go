package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// CategoryStore implementations
var _ services.CategoryStore = (*categories.Repository)(nil)

// BookStore implementations
var _ http.BookStore = (*books.Repository)(nil)

// UserLookup implementations
var _ auth.UserLookup = (*users.Repository)(nil)

// OwnerLister implementations
var _ scheduler.OwnerLister = (*categories.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

// CategoryAPI implementations
var _ http.CategoryAPI = (*services.CategoryService)(nil)

// PositionNormalizer implementations
var _ tasks.PositionNormalizer = (*services.CategoryService)(nil)

// =============================================================================
// Background Work
// =============================================================================

// Pinger implementations
var _ http.Pinger = (*tasks.Client)(nil)
