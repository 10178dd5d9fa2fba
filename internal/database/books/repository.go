// Package books provides database operations for a user's book catalog.
//
// Every book is filed under exactly one category, and the category must
// belong to the same user as the book.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.CreateBook(ctx, userID, books.BookInput{Title: "Dune", Author: "Frank Herbert", CategoryID: 3})
//	shelves, err := repo.BooksByCategory(ctx, userID)
package books

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrNotFound        = errors.New("book not found")
	ErrForeignCategory = errors.New("category does not belong to the user")
	ErrInvalidBook     = errors.New("invalid book")
)

// BookInput holds the user-supplied fields of a new book.
type BookInput struct {
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	CategoryID uint       `json:"category_id"`
	Started    *time.Time `json:"started,omitempty"`
	Finished   *time.Time `json:"finished,omitempty"`
	Rating     *int       `json:"rating,omitempty"`
	Comment    string     `json:"comment,omitempty"`
}

// Validate trims the text fields and checks lengths, rating and dates.
func (in *BookInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Comment = strings.TrimSpace(in.Comment)

	switch {
	case in.Title == "" || utf8.RuneCountInString(in.Title) > entities.BookTitleMaxLength:
		return fmt.Errorf("%w: title must be 1-%d characters", ErrInvalidBook, entities.BookTitleMaxLength)
	case in.Author == "" || utf8.RuneCountInString(in.Author) > entities.BookAuthorMaxLength:
		return fmt.Errorf("%w: author must be 1-%d characters", ErrInvalidBook, entities.BookAuthorMaxLength)
	case in.CategoryID == 0:
		return fmt.Errorf("%w: category is required", ErrInvalidBook)
	case in.Rating != nil && (*in.Rating < 1 || *in.Rating > 10):
		return fmt.Errorf("%w: rating must be between 1 and 10", ErrInvalidBook)
	case in.Started != nil && in.Finished != nil && in.Finished.Before(*in.Started):
		return fmt.Errorf("%w: finished date is before started date", ErrInvalidBook)
	}
	return nil
}

// CategoryShelf is one category with the books filed under it.
type CategoryShelf struct {
	Category entities.Category `json:"category"`
	Books    []entities.Book   `json:"books"`
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook validates the input and stores a new book for owner.
func (r *Repository) CreateBook(ctx context.Context, owner uint, in BookInput) (*entities.Book, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	book := &entities.Book{
		UserID:     owner,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		Author:     in.Author,
		Started:    in.Started,
		Finished:   in.Finished,
		Rating:     in.Rating,
		Comment:    in.Comment,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.Category{}).
			Where("id = ? AND user_id = ?", in.CategoryID, owner).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: category %d", ErrForeignCategory, in.CategoryID)
		}
		return tx.Create(book).Error
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook retrieves one of the owner's books.
func (r *Repository) GetBook(ctx context.Context, owner, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// DeleteBook removes one of the owner's books.
func (r *Repository) DeleteBook(ctx context.Context, owner, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&entities.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// BooksByCategory returns every category of owner in position order, each
// with its books sorted by title. Empty categories are included.
func (r *Repository) BooksByCategory(ctx context.Context, owner uint) ([]CategoryShelf, error) {
	db := r.db.WithContext(ctx)

	var owned []entities.Category
	if err := db.Where("user_id = ?", owner).Order("position ASC").Find(&owned).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	var books []entities.Book
	if err := db.Where("user_id = ?", owner).Order("title ASC, id ASC").Find(&books).Error; err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	byCategory := make(map[uint][]entities.Book, len(owned))
	for _, book := range books {
		byCategory[book.CategoryID] = append(byCategory[book.CategoryID], book)
	}

	shelves := make([]CategoryShelf, 0, len(owned))
	for _, category := range owned {
		shelf := byCategory[category.ID]
		if shelf == nil {
			shelf = []entities.Book{}
		}
		shelves = append(shelves, CategoryShelf{Category: category, Books: shelf})
	}
	return shelves, nil
}

// BooksInCategory returns one of the owner's categories with its books
// sorted by title. An unknown name yields categories.ErrNotFound.
func (r *Repository) BooksInCategory(ctx context.Context, owner uint, name string) (*CategoryShelf, error) {
	db := r.db.WithContext(ctx)

	var category entities.Category
	err := db.Where("user_id = ? AND name = ?", owner, strings.TrimSpace(name)).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %q", categories.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	books := []entities.Book{}
	err = db.Where("user_id = ? AND category_id = ?", owner, category.ID).
		Order("title ASC, id ASC").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books of category %q: %w", category.Name, err)
	}
	return &CategoryShelf{Category: category, Books: books}, nil
}
