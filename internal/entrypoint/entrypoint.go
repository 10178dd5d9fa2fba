package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/categories"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the server so no new tasks are picked up
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	categoryRepo := categories.NewRepository(db.DB)
	categoryRepo.SetCreateRetries(cfg.Categories.CreateMaxRetries)
	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	categoryService := services.NewCategoryService(categoryRepo, cfg.Categories.DefaultNames)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.ConfigFrom(cfg.Tasks)

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewNormalizePositionsQueue(categoryService, taskCfg))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	normalizeScheduler := scheduler.NewNormalizeScheduler(
		cfg.Categories.NormalizeSchedule,
		categoryRepo,
		normalizeDispatcher(taskClient, categoryService),
	)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := normalizeScheduler.Start(schedulerCtx); err != nil {
		log.Fatalf("Failed to start normalisation scheduler: %v", err)
	}

	var authMiddleware *auth.Middleware
	var rateLimiter *auth.RateLimiter
	switch cfg.Auth.Mode {
	case config.AuthModeToken:
		log.Printf("Authentication mode: token")
		rateLimiter = auth.NewRateLimiter(auth.DefaultRateLimitConfig())
		authMiddleware = auth.NewMiddleware(userRepo, cfg.Auth, rateLimiter)
	case config.AuthModeNone, "":
		log.Printf("Authentication mode: none (no authentication required)")
		created, err := categoryService.EnsureDefaultCategories(context.Background(), auth.DefaultUserID)
		if err != nil {
			log.Fatalf("Failed to create default categories: %v", err)
		}
		if len(created) > 0 {
			log.Printf("Created %d default categories", len(created))
		}
	default:
		log.Fatalf("Unknown AUTH_MODE %q (expected %q or %q)", cfg.Auth.Mode, config.AuthModeNone, config.AuthModeToken)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		Categories:     categoryService,
		Books:          bookRepo,
		AuthMiddleware: authMiddleware,
		TaskClient:     taskClient,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		normalizeScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if rateLimiter != nil {
			rateLimiter.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}

// normalizeDispatcher enqueues a normalisation task per owner when the
// queue is available and normalises inline otherwise.
func normalizeDispatcher(taskClient *tasks.Client, normalizer tasks.PositionNormalizer) scheduler.Dispatcher {
	return func(ctx context.Context, owner uint) error {
		if taskClient != nil && taskClient.Running() {
			_, err := taskClient.Add(tasks.NormalizePositionsTask{UserID: owner}).Save()
			return err
		}
		_, err := normalizer.NormalizePositions(ctx, owner)
		return err
	}
}
