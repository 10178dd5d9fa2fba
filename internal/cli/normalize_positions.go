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
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
)

// NormalizePositionsCommand renumbers category positions to 1..N for one
// user or for every user, without the server running.
type NormalizePositionsCommand struct {
	Username     string
	DatabasePath string
	Verbose      bool

	cfg *config.Config
}

func NewNormalizePositionsCommand(cfg *config.Config) *NormalizePositionsCommand {
	return &NormalizePositionsCommand{cfg: cfg}
}

func (cmd *NormalizePositionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("normalize-positions", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Only normalise this user's categories (default: every user)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print the resulting order")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s normalize-positions [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Close gaps in category positions, keeping their order.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

func (cmd *NormalizePositionsCommand) Run() error {
	dbCfg := cmd.cfg.Database
	dbCfg.Path = cmd.DatabasePath

	db, err := database.NewDatabase(dbCfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	repo := categories.NewRepository(db.DB)
	service := services.NewCategoryService(repo, nil)

	normalizeOne := func(ctx context.Context, owner uint) error {
		moved, err := service.NormalizePositions(ctx, owner)
		if err != nil {
			return err
		}
		fmt.Printf("User %d: %d categories moved\n", owner, moved)
		if cmd.Verbose {
			list, err := service.ListCategories(ctx, owner)
			if err != nil {
				return err
			}
			for _, category := range list {
				fmt.Printf("  %d. %s\n", category.Position, category.Name)
			}
		}
		return nil
	}

	if cmd.Username != "" {
		user, err := users.NewRepository(db.DB).GetUserByUsername(cmd.Username)
		if err != nil {
			return err
		}
		return normalizeOne(ctx, user.ID)
	}

	count, err := scheduler.NewNormalizeScheduler("", repo, normalizeOne).RunNow(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Normalised categories of %d users\n", count)
	return nil
}
