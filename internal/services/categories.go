package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CategoryService is the entry point for creating, listing and reordering a
// user's categories. Callers address categories by name; the service
// resolves names to the owner's records before calling the store.
type CategoryService struct {
	store        CategoryStore
	defaultNames []string
}

// NewCategoryService creates a category service. defaultNames are created
// by EnsureDefaultCategories for users without categories.
func NewCategoryService(store CategoryStore, defaultNames []string) *CategoryService {
	return &CategoryService{store: store, defaultNames: defaultNames}
}

// CreateCategory adds a category after the owner's last one.
func (s *CategoryService) CreateCategory(ctx context.Context, owner uint, name string) (*entities.Category, error) {
	return s.store.Create(ctx, owner, name)
}

// ListCategories returns the owner's categories in display order.
func (s *CategoryService) ListCategories(ctx context.Context, owner uint) ([]entities.Category, error) {
	return s.store.ListByOwner(ctx, owner)
}

// SwapPositions exchanges the named category's position with the category
// currently at newPosition.
func (s *CategoryService) SwapPositions(ctx context.Context, owner uint, name string, newPosition int) error {
	category, err := s.store.GetByOwnerAndName(ctx, owner, name)
	if err != nil {
		return err
	}
	return s.store.SwapPosition(ctx, category, newPosition)
}

// BulkSetPositions moves every named category to its new position at once.
// Unknown names fail with categories.ErrNotFound before anything is written.
func (s *CategoryService) BulkSetPositions(ctx context.Context, owner uint, positions map[string]int) error {
	if len(positions) == 0 {
		return nil
	}

	existing, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}
	byName := make(map[string]*entities.Category, len(existing))
	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}

	names := make([]string, 0, len(positions))
	for name := range positions {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]categories.PositionAssignment, 0, len(names))
	for _, name := range names {
		category, ok := byName[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("%w: %q", categories.ErrNotFound, name)
		}
		assignments = append(assignments, categories.PositionAssignment{
			Category: category,
			Position: positions[name],
		})
	}

	return s.store.SetPositions(ctx, owner, assignments)
}

// RenameCategory changes the name of one of the owner's categories.
func (s *CategoryService) RenameCategory(ctx context.Context, owner uint, name, newName string) (*entities.Category, error) {
	return s.store.Rename(ctx, owner, name, newName)
}

// DeleteCategory removes a category and its books.
func (s *CategoryService) DeleteCategory(ctx context.Context, owner uint, name string) error {
	return s.store.Delete(ctx, owner, name)
}

// NormalizePositions renumbers the owner's categories to 1..N.
func (s *CategoryService) NormalizePositions(ctx context.Context, owner uint) (int, error) {
	moved, err := s.store.Normalize(ctx, owner)
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		log.Printf("Normalized %d category positions for user %d", moved, owner)
	}
	return moved, nil
}

// EnsureDefaultCategories creates the configured default categories for an
// owner who has none yet.
func (s *CategoryService) EnsureDefaultCategories(ctx context.Context, owner uint) ([]entities.Category, error) {
	if len(s.defaultNames) == 0 {
		return nil, nil
	}
	created, err := s.store.EnsureDefaults(ctx, owner, s.defaultNames)
	if err != nil {
		return nil, err
	}
	if len(created) > 0 {
		log.Printf("Created %d default categories for user %d", len(created), owner)
	}
	return created, nil
}
