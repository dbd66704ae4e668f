package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/taskmaster/scheduler/internal/adapters/repository"
	"github.com/taskmaster/scheduler/internal/application/services"
	"github.com/taskmaster/scheduler/internal/domain/calendar"
	"github.com/taskmaster/scheduler/internal/domain/entities"
	"github.com/taskmaster/scheduler/internal/infrastructure/cache"
	"github.com/taskmaster/scheduler/internal/infrastructure/config"
	"github.com/taskmaster/scheduler/internal/infrastructure/database"
	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
	"github.com/taskmaster/scheduler/internal/infrastructure/server"
	"github.com/taskmaster/scheduler/internal/ports"
	"github.com/taskmaster/scheduler/internal/ui"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the scheduler API server",
		Long:  "Start the API server with all configured routes, middleware and the background janitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration("down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion()
		},
	})

	return migrateCmd
}

// NewUserCommand creates the user management command
func NewUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			role, _ := cmd.Flags().GetString("role")

			if email == "" || password == "" {
				return errors.New("email and password are required")
			}

			return createUser(cmd.Context(), username, email, password, entities.UserRole(role))
		},
	}

	createUserCmd.Flags().String("username", "", "User name (defaults to the part of the email before @)")
	createUserCmd.Flags().String("email", "", "User email (required)")
	createUserCmd.Flags().String("password", "", "User password (required)")
	createUserCmd.Flags().String("role", string(entities.UserRoleUser), "User role (admin, user)")

	userCmd.AddCommand(createUserCmd)
	return userCmd
}

// NewCalendarCommand opens the terminal month view.
func NewCalendarCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show tasks laid out over the days of a month",
		Long:  "Fetch the tasks once and show them by due date. Use the arrow keys (or h/l) to change month, t for today and q to quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, _ := cmd.Flags().GetString("month")
			plain, _ := cmd.Flags().GetBool("plain")
			return runCalendar(cmd.Context(), month, plain)
		},
	}

	cmd.Flags().String("month", "", "Month to open as YYYY-MM (default: current month)")
	cmd.Flags().Bool("plain", false, "Print the month as plain text and exit")
	return cmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print scheduler version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scheduler %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build Date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	db, err := database.New(cfg.Database)
	if err != nil {
		appLogger.Errorw("Failed to connect to database", "error", err)
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.Connect(ctx, cfg.Redis, appLogger)
		if err != nil {
			// Calendar fetches fall back to the database.
			appLogger.Warnw("Redis unavailable, running without task cache", "error", err)
			redisCache = nil
		} else {
			defer redisCache.Close()
		}
	}

	srv, err := server.New(cfg, db, redisCache, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting scheduler API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"version", Version,
	)

	return srv.Run(ctx)
}

func runMigration(direction string) error {
	m, closeDB, err := openMigrator()
	if err != nil {
		return err
	}
	defer closeDB()

	switch direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	}

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to run")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	fmt.Printf("Migration %s completed successfully\n", direction)
	return nil
}

func showMigrationVersion() error {
	m, closeDB, err := openMigrator()
	if err != nil {
		return err
	}
	defer closeDB()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	fmt.Printf("Dirty: %t\n", dirty)
	return nil
}

func openMigrator() (*migrate.Migrate, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := db.Migrator()
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return m, func() { db.Close() }, nil
}

func createUser(ctx context.Context, username, email, password string, role entities.UserRole) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if username == "" {
		username = usernameFromEmail(email)
	}

	authService := services.NewAuthService(repository.NewUserRepository(db.DB), cfg.JWT, logger.NewNop())
	user, err := authService.CreateUser(ctx, ports.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	}, role)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Role: %s\n", user.Role)
	return nil
}

func runCalendar(ctx context.Context, month string, plain bool) error {
	var opts []ui.Option
	if month != "" {
		ref, err := calendar.ParseMonth(month)
		if err != nil {
			return err
		}
		opts = append(opts, ui.WithMonth(ref))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	loc, err := cfg.Calendar.GetLocation()
	if err != nil {
		return err
	}
	opts = append(opts, ui.WithLocation(loc))

	// The TUI owns the terminal, so logs only go to a file if configured.
	logCfg := cfg.Logger
	if logCfg.Output != "file" {
		logCfg.Output = "stderr"
	}
	appLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()
	opts = append(opts, ui.WithLogger(appLogger))

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	taskService := services.NewTaskService(repository.NewTaskRepository(db.DB), appLogger)

	if plain {
		state, err := ui.Load(ctx, taskService, opts...)
		if state == nil {
			return err
		}
		fmt.Print(ui.Render(state))
		if err != nil {
			log.Printf("warning: could not load tasks: %v", err)
		}
		return nil
	}

	return ui.Run(ctx, taskService, opts...)
}

func usernameFromEmail(email string) string {
	for i, r := range email {
		if r == '@' {
			email = email[:i]
			break
		}
	}
	if len(email) > 50 {
		email = email[:50]
	}
	return email
}
