// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, DSN pragmas, migrations
//	├── categories/      # Categories, positions and reordering
//	├── books/           # Book catalog filed under categories
//	└── users/           # Users and API token hashes
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	categoriesRepo := categories.NewRepository(db.DB)
//	booksRepo := books.NewRepository(db.DB)
//
//	fiction, err := categoriesRepo.Create(ctx, userID, "fiction")
//	shelves, err := booksRepo.BooksByCategory(ctx, userID)
//
// # Interface Implementations
//
//   - categories.Repository: implements services.CategoryStore and scheduler.OwnerLister
//   - books.Repository: implements http.BookStore
//   - users.Repository: implements auth.UserLookup
//
// # Concurrency
//
// The connection is opened with _txlock=immediate, so every transaction
// takes the SQLite write lock at BEGIN. Writers queue for up to the
// configured busy timeout instead of failing mid-transaction.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/shelves/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the entity to the AutoMigrate list in database.go
//  5. Add compile-time interface check in internal/interfaces/checks.go
package database
