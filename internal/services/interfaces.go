package services

import (
	"context"

	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// CategoryStore is the storage and reassignment surface the category
// service needs. Implemented by categories.Repository.
type CategoryStore interface {
	Create(ctx context.Context, owner uint, name string) (*entities.Category, error)
	ListByOwner(ctx context.Context, owner uint) ([]entities.Category, error)
	GetByOwnerAndName(ctx context.Context, owner uint, name string) (*entities.Category, error)
	Rename(ctx context.Context, owner uint, name, newName string) (*entities.Category, error)
	Delete(ctx context.Context, owner uint, name string) error
	EnsureDefaults(ctx context.Context, owner uint, names []string) ([]entities.Category, error)

	SwapPosition(ctx context.Context, category *entities.Category, newPosition int) error
	SetPositions(ctx context.Context, owner uint, assignments []categories.PositionAssignment) error
	Normalize(ctx context.Context, owner uint) (int, error)
}
