package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/services"
)

// CreateUserCommand registers a user and prints their API token.
type CreateUserCommand struct {
	Username     string
	DatabasePath string
	SkipDefaults bool

	cfg *config.Config
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{cfg: cfg}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username, 3-20 letters, digits, '_' or '-' (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.BoolVar(&cmd.SkipDefaults, "no-defaults", false, "Do not create the default categories for the new user")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user and print their API token. The token is shown only once.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-user -username reader\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-user -username reader -db ./bookshelf.db -no-defaults\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		fs.Usage()
		return fmt.Errorf("required flag -username not provided")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	dbCfg := cmd.cfg.Database
	dbCfg.Path = cmd.DatabasePath

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	user, token, err := users.NewRepository(db.DB).CreateUser(cmd.Username)
	if err != nil {
		return err
	}

	fmt.Printf("Created user %q (id %d)\n", user.Username, user.ID)

	if !cmd.SkipDefaults {
		service := services.NewCategoryService(categories.NewRepository(db.DB), cmd.cfg.Categories.DefaultNames)
		created, err := service.EnsureDefaultCategories(context.Background(), user.ID)
		if err != nil {
			return fmt.Errorf("user created but default categories failed: %w", err)
		}
		for _, category := range created {
			fmt.Printf("  %d. %s\n", category.Position, category.Name)
		}
	}

	fmt.Println()
	fmt.Println("API token (store it now, it cannot be shown again):")
	fmt.Println(token)
	return nil
}
