package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultCategoryCreateMaxRetries bounds retries of a category insert that
	// lost the race for the next position
	DefaultCategoryCreateMaxRetries = 3
)
