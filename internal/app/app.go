package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"flow-ai/chatcore/internal/api"
	"flow-ai/chatcore/internal/config"
	"flow-ai/chatcore/internal/database"
	"flow-ai/chatcore/internal/render"
	"flow-ai/chatcore/internal/repository"
	"flow-ai/chatcore/internal/search"
	"flow-ai/chatcore/internal/service"
	"flow-ai/chatcore/internal/stream"
)

// logLevel is shared by the default logger so a config reload can change it in place.
var logLevel = new(slog.LevelVar)

// App is the assembled server with the store handles it owns.
type App struct {
	Server *http.Server
	DB     *sql.DB
	Redis  *redis.Client
}

func Run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		// slog is not yet configured, so use the default logger for this critical error.
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	setupLogger(cfg.LogLevel)
	logConfigSource()
	config.Watch(func(c *config.Config) {
		logLevel.Set(parseLevel(c.LogLevel))
	})

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer app.Close()

	slog.Info("Starting server", "port", cfg.AppPort, "store", cfg.StoreDriver, "upstream", cfg.UpstreamURL)
	if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		return 1
	}
	return 0
}

// NewApp opens the configured store and wires every component behind the HTTP server.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{}
	ctx := context.Background()

	var (
		repo     repository.Repository
		settings repository.SettingsStore
	)
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		db, err := database.InitDB(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		app.DB = db
		repo = repository.NewSQLiteRepository(db)
		settings = repository.NewSQLiteSettingsStore(db)
		slog.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)
	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		app.Redis = rdb
		repo = repository.NewRedisRepository(rdb)
		settings = repository.NewRedisSettingsStore(rdb)
		slog.Info("Successfully connected to Redis.", "addr", cfg.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	coord := search.NewCoordinator(cfg.WebSearchDefault)
	settingsService := service.NewSettingsService(settings, coord)
	appSettings, err := settingsService.InitAndGet(ctx, service.Settings{WebSearchEnabled: cfg.WebSearchDefault})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize application settings: %w", err)
	}
	slog.Info("Loaded application settings", "web_search_enabled", appSettings.WebSearchEnabled)

	var accOpts []stream.Option
	if cfg.StreamTimeout > 0 {
		accOpts = append(accOpts, stream.WithTimeout(cfg.StreamTimeout))
	}
	acc := stream.NewAccumulator(cfg.UpstreamURL, coord, accOpts...)

	var fmtOpts []render.Option
	if cfg.SanitizeHTML {
		fmtOpts = append(fmtOpts, render.WithSanitizer(render.NewSanitizer()))
	}
	formatter := render.NewFormatter(fmtOpts...)

	conversationService := service.NewConversationService(repo, acc, coord)

	router := api.NewRouter(
		api.NewConversationHandler(conversationService, formatter),
		api.NewSearchHandler(conversationService, settingsService, formatter),
		api.NewRenderHandler(formatter),
		cfg.StaticDir,
	)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}
	return app, nil
}

// Close releases the store handles.
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}
}

func logConfigSource() {
	configFileUsed := viper.ConfigFileUsed()
	if configFileUsed != "" {
		slog.Info("Successfully loaded configuration from file.", "file", configFileUsed)
	} else {
		slog.Info("Configuration file not found. Using environment variables and defaults.")
	}
}

func setupLogger(level string) {
	logLevel.Set(parseLevel(level))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
