package entities

import (
	"time"
)

// Field limits shared by validation and the schema.
const (
	CategoryNameMaxLength = 20
	BookTitleMaxLength    = 60
	BookAuthorMaxLength   = 60
	UsernameMinLength     = 3
	UsernameMaxLength     = 20
)

// DefaultCategoryNames are created for a user who has no categories yet.
var DefaultCategoryNames = []string{"to-read", "reading", "finished"}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:20" json:"username"`
	TokenHash string    `gorm:"uniqueIndex;size:64" json:"-"` // sha256 of the API token
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category is a user-owned shelf. Name and position are both unique per user
// and the database enforces it, not just the application.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_categories_user_name,priority:1;uniqueIndex:idx_categories_user_position,priority:1" json:"user_id"`
	Name      string    `gorm:"not null;size:20;uniqueIndex:idx_categories_user_name,priority:2" json:"name"`
	Position  int       `gorm:"not null;uniqueIndex:idx_categories_user_position,priority:2" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	CategoryID uint       `gorm:"index;not null" json:"category_id"`
	Title      string     `gorm:"size:60" json:"title"`
	Author     string     `gorm:"size:60" json:"author"`
	Started    *time.Time `json:"started,omitempty"`
	Finished   *time.Time `json:"finished,omitempty"`
	Rating     *int       `json:"rating,omitempty"` // 1-10
	Comment    string     `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Category) TableName() string {
	return "categories"
}

func (Book) TableName() string {
	return "books"
}
