package categories

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// PositionAssignment is one entry of a bulk reassignment: the category and
// the position it should hold once the reassignment commits.
type PositionAssignment struct {
	Category *entities.Category
	Position int
}

// SwapPosition exchanges the position of category with the category of the
// same owner that currently holds newPosition.
//
// Moving into an empty slot is not supported: if no category holds
// newPosition, ErrNotFound is returned and nothing is written. Negative
// positions are never held, so they are reported the same way. Both rows are
// updated in one unit of work, so a failure leaves both unchanged. On
// success category.Position is set to newPosition.
func (r *Repository) SwapPosition(ctx context.Context, category *entities.Category, newPosition int) error {
	if category.Position == newPosition {
		return nil
	}
	if newPosition < 0 {
		return fmt.Errorf("%w: no category at position %d", ErrNotFound, newPosition)
	}

	swapped := false
	err := r.unitOfWork(ctx, func(tx *Repository) error {
		current, err := tx.getByID(category.UserID, category.ID)
		if err != nil {
			return err
		}
		if current.Position == newPosition {
			return nil
		}

		other, err := tx.getByPosition(current.UserID, newPosition)
		if err != nil {
			return err
		}

		oldPosition := current.Position
		if err := tx.setPosition(current, parkingSlot(current)); err != nil {
			return err
		}
		if err := tx.setPosition(other, oldPosition); err != nil {
			return err
		}
		if err := tx.setPosition(current, newPosition); err != nil {
			return err
		}
		swapped = true
		return tx.validatePositions(current.UserID)
	})
	if err != nil {
		return err
	}

	if swapped {
		category.Position = newPosition
	}
	return nil
}

// SetPositions applies a bulk reassignment of the owner's categories in one
// unit of work.
//
// Every mapped category is first moved to a private negative slot, then all
// target positions are written and the owner's full position set is
// checked. If two categories end up at the same position, whether both were
// in the mapping or one was left untouched, everything is rolled back and a
// *ConstraintViolationError naming the owner and position is returned.
// Categories that do not belong to owner are reported as ErrNotFound.
func (r *Repository) SetPositions(ctx context.Context, owner uint, assignments []PositionAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	seen := make(map[uint]struct{}, len(assignments))
	for _, a := range assignments {
		if a.Category == nil {
			return fmt.Errorf("%w: missing category", ErrNotFound)
		}
		if a.Position < 0 {
			return fmt.Errorf("%w: %d for category %q", ErrInvalidPosition, a.Position, a.Category.Name)
		}
		if _, dup := seen[a.Category.ID]; dup {
			return fmt.Errorf("%w: category %q assigned more than once", ErrInvalidPosition, a.Category.Name)
		}
		seen[a.Category.ID] = struct{}{}
	}

	err := r.unitOfWork(ctx, func(tx *Repository) error {
		return tx.applyPositions(owner, assignments)
	})
	if err != nil {
		return err
	}

	for _, a := range assignments {
		a.Category.Position = a.Position
	}
	return nil
}

// Normalize renumbers the owner's categories to 1..N keeping their current
// order. It returns how many categories changed position.
func (r *Repository) Normalize(ctx context.Context, owner uint) (int, error) {
	moved := 0
	err := r.unitOfWork(ctx, func(tx *Repository) error {
		var categories []entities.Category
		if err := tx.db.Where("user_id = ?", owner).Order("position ASC").Find(&categories).Error; err != nil {
			return err
		}

		var assignments []PositionAssignment
		for i := range categories {
			if categories[i].Position != i+1 {
				assignments = append(assignments, PositionAssignment{Category: &categories[i], Position: i + 1})
			}
		}
		if len(assignments) == 0 {
			return nil
		}

		moved = len(assignments)
		return tx.applyPositions(owner, assignments)
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// applyPositions must run inside a unit of work.
func (r *Repository) applyPositions(owner uint, assignments []PositionAssignment) error {
	rows := make([]*entities.Category, len(assignments))
	for i, a := range assignments {
		row, err := r.getByID(owner, a.Category.ID)
		if err != nil {
			return err
		}
		rows[i] = row
	}

	for _, row := range rows {
		if err := r.setPosition(row, parkingSlot(row)); err != nil {
			return err
		}
	}

	for i, row := range rows {
		if err := r.setPosition(row, assignments[i].Position); err != nil {
			return err
		}
	}

	return r.validatePositions(owner)
}

// validatePositions checks the owner's committed-to-be position set.
func (r *Repository) validatePositions(owner uint) error {
	var duplicated []int
	err := r.db.Model(&entities.Category{}).
		Where("user_id = ?", owner).
		Group("position").
		Having("COUNT(*) > 1 OR position < 0").
		Order("position ASC").
		Limit(1).
		Pluck("position", &duplicated).Error
	if err != nil {
		return fmt.Errorf("failed to validate category positions: %w", err)
	}
	if len(duplicated) > 0 {
		return &ConstraintViolationError{Owner: owner, Position: duplicated[0]}
	}
	return nil
}

// parkingSlot is a negative position unique to the category. Real positions
// are never negative, so parked rows cannot collide with anything.
func parkingSlot(category *entities.Category) int {
	return -int(category.ID)
}
