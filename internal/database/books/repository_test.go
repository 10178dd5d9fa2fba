package books

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	dbPath := filepath.Join(t.TempDir(), "books.db")

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Category{}, &entities.Book{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db), db
}

func createCategory(t *testing.T, db *gorm.DB, owner uint, name string, position int) entities.Category {
	t.Helper()
	category := entities.Category{UserID: owner, Name: name, Position: position}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func intPtr(v int) *int { return &v }

func TestRepository_CreateBook(t *testing.T) {
	repo, db := setupTestDB(t)
	category := createCategory(t, db, 1, "reading", 1)

	book, err := repo.CreateBook(context.Background(), 1, BookInput{
		Title:      "  Dune ",
		Author:     "Frank Herbert",
		CategoryID: category.ID,
		Rating:     intPtr(9),
	})

	require.NoError(t, err)
	assert.NotZero(t, book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, uint(1), book.UserID)
	assert.Equal(t, 9, *book.Rating)
}

func TestRepository_CreateBook_ForeignCategory(t *testing.T) {
	repo, db := setupTestDB(t)
	theirs := createCategory(t, db, 2, "reading", 1)

	_, err := repo.CreateBook(context.Background(), 1, BookInput{
		Title:      "Dune",
		Author:     "Frank Herbert",
		CategoryID: theirs.ID,
	})

	assert.ErrorIs(t, err, ErrForeignCategory)

	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBookInput_Validate(t *testing.T) {
	started := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	finished := started.AddDate(0, 0, -1)
	long := "0123456789012345678901234567890123456789012345678901234567890"

	tests := []struct {
		name  string
		input BookInput
	}{
		{"empty title", BookInput{Author: "A", CategoryID: 1}},
		{"long title", BookInput{Title: long, Author: "A", CategoryID: 1}},
		{"long author", BookInput{Title: "T", Author: long, CategoryID: 1}},
		{"missing category", BookInput{Title: "T", Author: "A"}},
		{"rating too low", BookInput{Title: "T", Author: "A", CategoryID: 1, Rating: intPtr(0)}},
		{"rating too high", BookInput{Title: "T", Author: "A", CategoryID: 1, Rating: intPtr(11)}},
		{"finished before started", BookInput{Title: "T", Author: "A", CategoryID: 1, Started: &started, Finished: &finished}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.input.Validate(), ErrInvalidBook)
		})
	}

	valid := BookInput{Title: "T", Author: "A", CategoryID: 1, Started: &finished, Finished: &started, Rating: intPtr(10)}
	assert.NoError(t, valid.Validate())
}

func TestRepository_GetAndDeleteBook(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()
	category := createCategory(t, db, 1, "reading", 1)

	book, err := repo.CreateBook(ctx, 1, BookInput{Title: "Emma", Author: "Jane Austen", CategoryID: category.ID})
	require.NoError(t, err)

	found, err := repo.GetBook(ctx, 1, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Emma", found.Title)

	_, err = repo.GetBook(ctx, 2, book.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteBook(ctx, 2, book.ID), ErrNotFound)
	require.NoError(t, repo.DeleteBook(ctx, 1, book.ID))
	assert.ErrorIs(t, repo.DeleteBook(ctx, 1, book.ID), ErrNotFound)
}

func TestRepository_BooksByCategory(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	finished := createCategory(t, db, 1, "finished", 2)
	toRead := createCategory(t, db, 1, "to-read", 1)
	empty := createCategory(t, db, 1, "abandoned", 5)
	other := createCategory(t, db, 2, "to-read", 1)

	for _, in := range []BookInput{
		{Title: "Persuasion", Author: "Jane Austen", CategoryID: finished.ID},
		{Title: "Emma", Author: "Jane Austen", CategoryID: finished.ID},
		{Title: "Dune", Author: "Frank Herbert", CategoryID: toRead.ID},
	} {
		_, err := repo.CreateBook(ctx, 1, in)
		require.NoError(t, err)
	}
	_, err := repo.CreateBook(ctx, 2, BookInput{Title: "Ulysses", Author: "James Joyce", CategoryID: other.ID})
	require.NoError(t, err)

	shelves, err := repo.BooksByCategory(ctx, 1)
	require.NoError(t, err)
	require.Len(t, shelves, 3)

	assert.Equal(t, "to-read", shelves[0].Category.Name)
	require.Len(t, shelves[0].Books, 1)
	assert.Equal(t, "Dune", shelves[0].Books[0].Title)

	assert.Equal(t, "finished", shelves[1].Category.Name)
	require.Len(t, shelves[1].Books, 2)
	assert.Equal(t, "Emma", shelves[1].Books[0].Title)
	assert.Equal(t, "Persuasion", shelves[1].Books[1].Title)

	assert.Equal(t, empty.ID, shelves[2].Category.ID)
	assert.NotNil(t, shelves[2].Books)
	assert.Empty(t, shelves[2].Books)
}

func TestRepository_BooksByCategory_NoCategories(t *testing.T) {
	repo, _ := setupTestDB(t)

	shelves, err := repo.BooksByCategory(context.Background(), 1)

	require.NoError(t, err)
	assert.Empty(t, shelves)
}

func TestRepository_BooksInCategory(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	finished := createCategory(t, db, 1, "finished", 1)
	reading := createCategory(t, db, 1, "reading", 2)
	theirs := createCategory(t, db, 2, "finished", 1)

	for _, in := range []BookInput{
		{Title: "Persuasion", Author: "Jane Austen", CategoryID: finished.ID},
		{Title: "Emma", Author: "Jane Austen", CategoryID: finished.ID},
		{Title: "Dune", Author: "Frank Herbert", CategoryID: reading.ID},
	} {
		_, err := repo.CreateBook(ctx, 1, in)
		require.NoError(t, err)
	}
	_, err := repo.CreateBook(ctx, 2, BookInput{Title: "Ulysses", Author: "James Joyce", CategoryID: theirs.ID})
	require.NoError(t, err)

	shelf, err := repo.BooksInCategory(ctx, 1, " finished ")
	require.NoError(t, err)
	assert.Equal(t, finished.ID, shelf.Category.ID)
	require.Len(t, shelf.Books, 2)
	assert.Equal(t, "Emma", shelf.Books[0].Title)
	assert.Equal(t, "Persuasion", shelf.Books[1].Title)

	shelf, err = repo.BooksInCategory(ctx, 2, "finished")
	require.NoError(t, err)
	require.Len(t, shelf.Books, 1)
	assert.Equal(t, "Ulysses", shelf.Books[0].Title)
}

func TestRepository_BooksInCategory_EmptyAndUnknown(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	createCategory(t, db, 1, "abandoned", 1)
	createCategory(t, db, 2, "reading", 1)

	shelf, err := repo.BooksInCategory(ctx, 1, "abandoned")
	require.NoError(t, err)
	assert.NotNil(t, shelf.Books)
	assert.Empty(t, shelf.Books)

	_, err = repo.BooksInCategory(ctx, 1, "reading")
	assert.ErrorIs(t, err, categories.ErrNotFound)

	_, err = repo.BooksInCategory(ctx, 1, "ghost")
	assert.ErrorIs(t, err, categories.ErrNotFound)
}
