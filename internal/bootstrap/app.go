package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "cvwizard-backend/internal/auth"
	"cvwizard-backend/internal/generation"
	genclient "cvwizard-backend/internal/generation/client"
	"cvwizard-backend/internal/jobs"
	"cvwizard-backend/internal/profiles"
	"cvwizard-backend/internal/shared/config"
	"cvwizard-backend/internal/shared/server"
	"cvwizard-backend/internal/shared/storage/db"
	"cvwizard-backend/internal/wizard"
)

// App holds the application's shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	JobsRepo     jobs.Repo
	ProfilesRepo profiles.Repo

	JobsService     *jobs.Service
	ProfilesService *profiles.Service
	Generation      generation.API

	Cache    *wizard.DocumentCache
	Progress *wizard.ProgressStore

	JobsHandler     *jobs.Handler
	ProfilesHandler *profiles.Handler
	WizardHandler   *wizard.Handler
	GoogleAuth      *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}
	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		JobsHandler:     app.JobsHandler,
		ProfilesHandler: app.ProfilesHandler,
		WizardHandler:   app.WizardHandler,
		GoogleAuth:      app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.JobsRepo = &jobs.PGRepo{DB: app.DB}
		app.ProfilesRepo = &profiles.PGRepo{DB: app.DB}
	} else {
		app.JobsRepo = jobs.NewMemoryRepo()
		app.ProfilesRepo = profiles.NewMemoryRepo()
	}

	app.JobsService = &jobs.Service{
		Repo:            app.JobsRepo,
		DefaultLanguage: app.Config.DefaultLanguage,
	}
	app.ProfilesService = &profiles.Service{Repo: app.ProfilesRepo}

	apiClient, err := genclient.New(
		app.Config.GenerationURL,
		app.Config.GenerationToken,
		app.Config.GenerationTimeout,
	)
	if err != nil {
		return err
	}
	app.Generation = apiClient

	app.Cache = wizard.NewDocumentCache()
	app.Progress = wizard.NewProgressStore()

	app.JobsHandler = jobs.NewHandler(app.JobsService)
	app.ProfilesHandler = profiles.NewHandler(app.ProfilesService)
	app.WizardHandler = wizard.NewHandler(
		app.Generation,
		app.Cache,
		app.Progress,
		app.JobsService,
		app.ProfilesService,
		app.Config.DefaultLanguage,
		wizard.WithInterval(app.Config.PollInterval),
	)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
	)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
