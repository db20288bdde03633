package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/jamlabs/reimbursement-service/internal"
	"github.com/jamlabs/reimbursement-service/internal/auth"
	"github.com/jamlabs/reimbursement-service/internal/core/events"
	"github.com/jamlabs/reimbursement-service/internal/mailer"
	"github.com/jamlabs/reimbursement-service/internal/reimbursement"
	reimbursementPostgres "github.com/jamlabs/reimbursement-service/internal/reimbursement/postgres"
	"github.com/jamlabs/reimbursement-service/internal/transport/rest"
	"github.com/jamlabs/reimbursement-service/internal/user"
	userPostgres "github.com/jamlabs/reimbursement-service/internal/user/postgres"
	"github.com/jamlabs/reimbursement-service/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config               *internal.Config
	DB                   *sqlx.DB
	Router               *chi.Mux
	UserHandler          *user.Handler
	ReimbursementHandler *reimbursement.Handler
	Logger               *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.UserHandler, deps.ReimbursementHandler, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already pooled pgx connection
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	userRepo := userPostgres.NewUserRepository(gormDB)
	reimbursementRepo := reimbursementPostgres.NewReimbursementRepository(gormDB)

	eventBus := events.NewEventBus(lg)
	mailerClient := mailer.NewClient(mailer.Config{
		URL:     config.Mailer.URL,
		Timeout: config.Mailer.Timeout,
	}, lg)
	mailer.NewEventHandler(mailerClient, lg).RegisterEventHandlers(eventBus)

	authService := auth.NewService(userRepo, lg)
	policy := auth.NewPolicy(lg)

	userService := user.NewService(userRepo, lg)
	reimbursementService := reimbursement.NewService(reimbursementRepo, userRepo, policy, eventBus, lg)

	return &Dependencies{
		Config:               config,
		Logger:               lg,
		DB:                   db,
		Router:               chi.NewRouter(),
		UserHandler:          user.NewHandler(userService, authService),
		ReimbursementHandler: reimbursement.NewHandler(reimbursementService, authService),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
