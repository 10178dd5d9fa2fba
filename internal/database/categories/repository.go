// Package categories provides database operations for user-owned book
// categories and their display order.
//
// Every category belongs to one user. Names and positions are unique per
// user, enforced by the unique indexes idx_categories_user_name and
// idx_categories_user_position. All multi-row writes run inside a single
// unit of work (see unitOfWork) that either commits in full or rolls back.
//
// # Interface Implementation
//
//	var _ services.CategoryStore = (*Repository)(nil)
//
// # Usage
//
//	repo := categories.NewRepository(db)
//	fiction, err := repo.Create(ctx, userID, "fiction")
//	err = repo.SwapPosition(ctx, fiction, 1)
package categories

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all category database operations.
type Repository struct {
	db            *gorm.DB
	createRetries int
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, createRetries: config.DefaultCategoryCreateMaxRetries}
}

// SetCreateRetries sets how many times Create attempts an insert that lost
// the next position to a concurrent creation.
func (r *Repository) SetCreateRetries(attempts int) {
	if attempts < 1 {
		attempts = 1
	}
	r.createRetries = attempts
}

// WithTx runs fn inside one unit of work. The repository passed to fn is
// bound to the transaction and must not escape it.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.unitOfWork(ctx, fn)
}

// unitOfWork begins a transaction and commits it only when fn returns nil.
// An error or a panic in fn rolls everything back.
func (r *Repository) unitOfWork(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}

		if err != nil {
			if rbErr := tx.Rollback().Error; rbErr != nil {
				err = fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
			}
			return
		}

		if commitErr := tx.Commit().Error; commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(&Repository{db: tx, createRetries: r.createRetries})
	return err
}

// NormalizeName trims a category name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > entities.CategoryNameMaxLength {
		return "", ErrInvalidName
	}
	return name, nil
}

// Create adds a category at one past the owner's highest position, or at 1
// when the owner has none.
//
// The position is computed and inserted in the same transaction. If a
// concurrent writer takes the position first, the unique index rejects the
// insert and Create tries again with a fresh maximum.
func (r *Repository) Create(ctx context.Context, owner uint, name string) (*entities.Category, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		var category *entities.Category
		err := r.unitOfWork(ctx, func(tx *Repository) error {
			position, err := tx.nextPosition(owner)
			if err != nil {
				return err
			}
			category, err = tx.insert(owner, name, position)
			return err
		})
		if err == nil {
			return category, nil
		}

		var conflict *ConstraintViolationError
		if errors.As(err, &conflict) && attempt < r.createRetries {
			log.Printf("Category position %d for user %d was taken concurrently, retrying (%d/%d)",
				conflict.Position, owner, attempt, r.createRetries)
			continue
		}
		return nil, err
	}
}

// EnsureDefaults creates the given categories, in order, for an owner who
// has none. Owners that already have categories are left untouched.
func (r *Repository) EnsureDefaults(ctx context.Context, owner uint, names []string) ([]entities.Category, error) {
	var created []entities.Category
	err := r.unitOfWork(ctx, func(tx *Repository) error {
		var count int64
		if err := tx.db.Model(&entities.Category{}).Where("user_id = ?", owner).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		for i, raw := range names {
			name, err := NormalizeName(raw)
			if err != nil {
				return fmt.Errorf("default category %q: %w", raw, err)
			}
			category, err := tx.insert(owner, name, i+1)
			if err != nil {
				return err
			}
			created = append(created, *category)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListByOwner returns the owner's categories ordered by position.
func (r *Repository) ListByOwner(ctx context.Context, owner uint) ([]entities.Category, error) {
	categories := []entities.Category{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("position ASC").
		Find(&categories).Error
	return categories, err
}

// ListOwners returns every user id that owns at least one category.
func (r *Repository) ListOwners(ctx context.Context) ([]uint, error) {
	var owners []uint
	err := r.db.WithContext(ctx).
		Model(&entities.Category{}).
		Distinct().
		Order("user_id ASC").
		Pluck("user_id", &owners).Error
	return owners, err
}

// GetByOwnerAndName retrieves a category by its owner-scoped name.
func (r *Repository) GetByOwnerAndName(ctx context.Context, owner uint, name string) (*entities.Category, error) {
	return r.withContext(ctx).getByName(owner, name)
}

// GetByID retrieves a category by ID, scoped to its owner.
func (r *Repository) GetByID(ctx context.Context, owner, id uint) (*entities.Category, error) {
	return r.withContext(ctx).getByID(owner, id)
}

// Save persists the name and position of an existing category.
func (r *Repository) Save(ctx context.Context, category *entities.Category) error {
	return r.withContext(ctx).save(category)
}

// Rename changes a category's name. Renaming to the current name is a no-op.
func (r *Repository) Rename(ctx context.Context, owner uint, name, newName string) (*entities.Category, error) {
	newName, err := NormalizeName(newName)
	if err != nil {
		return nil, err
	}

	var category *entities.Category
	err = r.unitOfWork(ctx, func(tx *Repository) error {
		current, err := tx.getByName(owner, name)
		if err != nil {
			return err
		}
		category = current
		if current.Name == newName {
			return nil
		}
		current.Name = newName
		return tx.save(current)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category and the books filed under it. The freed
// position is left as a gap.
func (r *Repository) Delete(ctx context.Context, owner uint, name string) error {
	return r.unitOfWork(ctx, func(tx *Repository) error {
		category, err := tx.getByName(owner, name)
		if err != nil {
			return err
		}
		if err := tx.db.Where("user_id = ? AND category_id = ?", owner, category.ID).Delete(&entities.Book{}).Error; err != nil {
			return fmt.Errorf("failed to delete books of category %q: %w", category.Name, err)
		}
		return tx.db.Delete(&entities.Category{}, category.ID).Error
	})
}

func (r *Repository) withContext(ctx context.Context) *Repository {
	return &Repository{db: r.db.WithContext(ctx), createRetries: r.createRetries}
}

func (r *Repository) nextPosition(owner uint) (int, error) {
	var maxPosition int
	err := r.db.Model(&entities.Category{}).
		Where("user_id = ?", owner).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPosition).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max category position: %w", err)
	}
	return maxPosition + 1, nil
}

func (r *Repository) insert(owner uint, name string, position int) (*entities.Category, error) {
	category := &entities.Category{
		UserID:   owner,
		Name:     name,
		Position: position,
	}
	if err := r.db.Create(category).Error; err != nil {
		return nil, translateWriteError(err, owner, name, position)
	}
	return category, nil
}

func (r *Repository) getByID(owner, id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("id = ? AND user_id = ?", id, owner).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) getByName(owner uint, name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("user_id = ? AND name = ?", owner, strings.TrimSpace(name)).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) getByPosition(owner uint, position int) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("user_id = ? AND position = ?", owner, position).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: no category at position %d", ErrNotFound, position)
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) save(category *entities.Category) error {
	result := r.db.Model(&entities.Category{}).
		Where("id = ? AND user_id = ?", category.ID, category.UserID).
		Updates(map[string]any{
			"name":     category.Name,
			"position": category.Position,
		})
	if result.Error != nil {
		return translateWriteError(result.Error, category.UserID, category.Name, category.Position)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, category.ID)
	}
	return nil
}

// setPosition writes a single position without touching the name.
func (r *Repository) setPosition(category *entities.Category, position int) error {
	result := r.db.Model(&entities.Category{}).
		Where("id = ? AND user_id = ?", category.ID, category.UserID).
		Update("position", position)
	if result.Error != nil {
		return translateWriteError(result.Error, category.UserID, category.Name, position)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, category.ID)
	}
	return nil
}
