package commands

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jakechorley/care-scheduler/internal/config"
	"github.com/jakechorley/care-scheduler/pkg/clients/gmailclient"
	"github.com/jakechorley/care-scheduler/pkg/clients/sheetsclient"
	"github.com/jakechorley/care-scheduler/pkg/core/distance"
	"github.com/jakechorley/care-scheduler/pkg/db"
	"github.com/jakechorley/care-scheduler/pkg/postgres"
	"github.com/jakechorley/care-scheduler/pkg/sqlite"
	"github.com/jakechorley/care-scheduler/pkg/utils"
)

// AppContext holds the application dependencies shared across all commands.
// Google clients are created on first use so commands that never touch Google
// never start an OAuth flow.
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Distance *distance.Cache
	Logger   *zap.Logger
	Ctx      context.Context

	closeDatabase func()

	googleMu     sync.Mutex
	oauthConfig  *oauth2.Config
	oauthToken   *oauth2.Token
	sheetsClient *sheetsclient.Client
	gmailClient  *gmailclient.Client
}

// Init opens the configured database, applies migrations and builds the distance cache
func (app *AppContext) Init(ctx context.Context, env string, cfg *config.Config, logger *zap.Logger) error {
	app.Env = env
	app.Cfg = cfg
	app.Logger = logger
	app.Ctx = ctx

	logger.Info("Connecting to database", zap.String("driver", cfg.Database.Driver))
	database, closeDatabase, err := OpenDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	app.Database = database
	app.closeDatabase = closeDatabase
	logger.Debug("Database initialized successfully")

	logger.Info("Initializing distance source", zap.String("source", cfg.Distance.Source))
	app.Distance, err = NewDistanceCache(cfg.Distance, logger)
	if err != nil {
		app.Close()
		return err
	}

	return nil
}

// Close releases the database
func (app *AppContext) Close() {
	if app.closeDatabase != nil {
		app.closeDatabase()
		app.closeDatabase = nil
	}
}

// OpenDatabase connects to the configured store and brings its schema up to date
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (db.Database, func(), error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := postgres.NewDB(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		applied, err := pg.RunMigrations(ctx)
		if err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		for _, filename := range applied {
			logger.Info("Applied migration", zap.String("file", filename))
		}
		return pg, pg.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return store, func() { store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// NewDistanceCache builds the configured distance source wrapped in a cache
func NewDistanceCache(cfg config.DistanceConfig, logger *zap.Logger) (*distance.Cache, error) {
	var source distance.Source
	switch cfg.Source {
	case config.DistanceSourceTable:
		table, err := distance.LoadTableSource(cfg.TablePath)
		if err != nil {
			return nil, err
		}
		source = table
	case config.DistanceSourceCommand:
		source = distance.NewCommandSource(cfg.Command, cfg.Args, cfg.WorkDir)
	case config.DistanceSourceStatic:
		source = distance.NewStaticSource()
	default:
		return nil, fmt.Errorf("unsupported distance source %q", cfg.Source)
	}

	return distance.NewCache(source, distance.CacheOptions{
		Timeout: cfg.Timeout,
		MaxSize: cfg.CacheSize,
	}, logger), nil
}

// googleAuth loads the OAuth client and obtains a token, once per session
func (app *AppContext) googleAuth() (*oauth2.Config, *oauth2.Token, error) {
	if app.oauthToken != nil {
		return app.oauthConfig, app.oauthToken, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	oauthConfig := utils.GetOAuthConfig(oauthCfg)
	token, err := utils.GetTokenWithFlow(app.Ctx, oauthConfig, app.Env, app.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get OAuth token: %w", err)
	}

	app.oauthConfig = oauthConfig
	app.oauthToken = token
	return oauthConfig, token, nil
}

// SheetsClient returns the Sheets client, authorizing on first use
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	app.googleMu.Lock()
	defer app.googleMu.Unlock()

	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}
	oauthConfig, token, err := app.googleAuth()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthConfig, token)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	app.sheetsClient = client
	return client, nil
}

// GmailClient returns the Gmail client, authorizing on first use
func (app *AppContext) GmailClient() (*gmailclient.Client, error) {
	app.googleMu.Lock()
	defer app.googleMu.Unlock()

	if app.gmailClient != nil {
		return app.gmailClient, nil
	}
	oauthConfig, token, err := app.googleAuth()
	if err != nil {
		return nil, err
	}

	app.Logger.Info("Initializing gmail client")
	client, err := gmailclient.NewClient(app.Ctx, oauthConfig, token, app.Cfg.Google.GmailUserID, app.Cfg.Google.GmailSender)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail client: %w", err)
	}
	app.gmailClient = client
	return client, nil
}
