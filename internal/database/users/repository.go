// Package users provides database operations for user management.
//
// Users authenticate to the API with a bearer token. Only the sha256 hash of
// the token is stored; the plaintext is returned once by CreateUser.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, token, err := repo.CreateUser("reader")
//	user, err = repo.GetUserByTokenHash(auth.HashToken(token))
package users

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/entities"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("username already taken")
	ErrUsernameInvalid = errors.New("username must be 3-20 characters: letters, digits, '_' or '-'")
)

var usernamePattern = regexp.MustCompile(fmt.Sprintf(`^[a-zA-Z0-9_-]{%d,%d}$`,
	entities.UsernameMinLength, entities.UsernameMaxLength))

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user with a generated API token. The returned
// token is the only copy of the plaintext.
func (r *Repository) CreateUser(username string) (*entities.User, string, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, "", ErrUsernameInvalid
	}

	var count int64
	if err := r.db.Model(&entities.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user := &entities.User{
		Username:  username,
		TokenHash: auth.HashToken(token),
	}

	if err := r.db.Create(user).Error; err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetUserByTokenHash retrieves a user by the hash of their API token.
func (r *Repository) GetUserByTokenHash(hash string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("token_hash = ?", hash).First(&user).Error
	return found(&user, err)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	return found(&user, err)
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	return found(&user, err)
}

func found(user *entities.User, err error) (*entities.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
