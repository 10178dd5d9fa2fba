// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CategoryStore: Category persistence and reordering (internal/services/interfaces.go)
//   - BookStore: Book catalog grouped by category (internal/http/books.go)
//   - UserLookup: Resolve an API token hash to a user (internal/auth/middleware.go)
//   - OwnerLister: Users that own categories (internal/scheduler/normalize.go)
//
// ## Service Interfaces
//
//   - CategoryAPI: Name-addressed category operations (internal/http/categories.go)
//   - PositionNormalizer: Renumber a user's categories to 1..N (internal/tasks/normalize_positions.go)
//
// ## Health Interfaces
//
//   - Pinger: Reachability of a backing store (internal/http/health.go)
//
// # Adding a New Category Operation
//
//  1. Add the storage method to categories.Repository. Multi-row writes go
//     through unitOfWork so they commit or roll back as one:
//
//	func (r *Repository) MoveToEnd(ctx context.Context, category *entities.Category) error {
//		return r.unitOfWork(ctx, func(tx *Repository) error {
//			// ...
//			return tx.validatePositions(category.UserID)
//		})
//	}
//
//  2. Expose it on CategoryStore and CategoryService
//
//  3. Add it to CategoryAPI and register a route in router.go
//
// # Adding a New Background Task
//
//  1. Define the task and its processor in internal/tasks/
//
//	type ExportLibraryTask struct {
//		UserID uint `json:"user_id"`
//	}
//
//	func (t ExportLibraryTask) Config() backlite.QueueConfig
//
//  2. Register the queue in entrypoint.go before the client starts
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
