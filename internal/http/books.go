package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BookStore is the book catalog used by BooksController.
type BookStore interface {
	CreateBook(ctx context.Context, owner uint, in books.BookInput) (*entities.Book, error)
	GetBook(ctx context.Context, owner, id uint) (*entities.Book, error)
	DeleteBook(ctx context.Context, owner, id uint) error
	BooksByCategory(ctx context.Context, owner uint) ([]books.CategoryShelf, error)
	BooksInCategory(ctx context.Context, owner uint, name string) (*books.CategoryShelf, error)
}

type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

// Library handles GET /api/library
// Returns every category in display order with its books.
func (bc *BooksController) Library(c *gin.Context) {
	shelves, err := bc.store.BooksByCategory(c.Request.Context(), GetUserID(c))
	if err != nil {
		respondStoreError(c, err, "list library")
		return
	}
	c.JSON(http.StatusOK, gin.H{"shelves": shelves})
}

// Category handles GET /api/categories/:name/books
// Returns one category with its books.
func (bc *BooksController) Category(c *gin.Context) {
	shelf, err := bc.store.BooksInCategory(c.Request.Context(), GetUserID(c), c.Param("name"))
	if err != nil {
		respondStoreError(c, err, "list category books")
		return
	}
	c.JSON(http.StatusOK, shelf)
}

// Create handles POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	var in books.BookInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBadRequest(c, "invalid book payload")
		return
	}

	book, err := bc.store.CreateBook(c.Request.Context(), GetUserID(c), in)
	if err != nil {
		respondStoreError(c, err, "create book")
		return
	}
	respondCreated(c, book)
}

// Get handles GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBook(c.Request.Context(), GetUserID(c), id)
	if err != nil {
		respondStoreError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(c.Request.Context(), GetUserID(c), id); err != nil {
		respondStoreError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}
