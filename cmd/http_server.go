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
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/internal/assignment"
	assignmentPostgres "github.com/frahmantamala/role-assignment/internal/assignment/postgres"
	"github.com/frahmantamala/role-assignment/internal/auth"
	authPostgres "github.com/frahmantamala/role-assignment/internal/auth/postgres"
	"github.com/frahmantamala/role-assignment/internal/core/events"
	"github.com/frahmantamala/role-assignment/internal/employee"
	employeePostgres "github.com/frahmantamala/role-assignment/internal/employee/postgres"
	"github.com/frahmantamala/role-assignment/internal/fielddefinition"
	fieldDefPostgres "github.com/frahmantamala/role-assignment/internal/fielddefinition/postgres"
	"github.com/frahmantamala/role-assignment/internal/organizationdetail"
	orgDetailPostgres "github.com/frahmantamala/role-assignment/internal/organizationdetail/postgres"
	"github.com/frahmantamala/role-assignment/internal/organizationtype"
	orgTypePostgres "github.com/frahmantamala/role-assignment/internal/organizationtype/postgres"
	"github.com/frahmantamala/role-assignment/internal/parameter"
	parameterPostgres "github.com/frahmantamala/role-assignment/internal/parameter/postgres"
	"github.com/frahmantamala/role-assignment/internal/report"
	reportPostgres "github.com/frahmantamala/role-assignment/internal/report/postgres"
	"github.com/frahmantamala/role-assignment/internal/transport"
	"github.com/frahmantamala/role-assignment/internal/transport/rest"
	"github.com/frahmantamala/role-assignment/internal/transport/swagger"
	"github.com/frahmantamala/role-assignment/internal/user"
	userPostgres "github.com/frahmantamala/role-assignment/internal/user/postgres"
	"github.com/frahmantamala/role-assignment/pkg/logger"
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
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		// let audit handlers finish before the pool goes away
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	db := deps.GormDB

	if _, err := swagger.LoadSpec(context.Background(), cfg.Server.OpenAPIPath); err != nil {
		return fmt.Errorf("openapi document: %w", err)
	}

	base := transport.NewBaseHandler(lg)

	orgTypeService := organizationtype.NewService(orgTypePostgres.NewOrganizationTypeRepository(db), lg)
	fieldDefService := fielddefinition.NewService(fieldDefPostgres.NewFieldDefinitionRepository(db), orgTypeService, lg)
	orgDetailService := organizationdetail.NewService(orgDetailPostgres.NewOrganizationDetailRepository(db), orgTypeService, lg)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(db), lg)

	assignmentService := assignment.NewService(assignment.ServiceDeps{
		Repo:       assignmentPostgres.NewAssignmentRepository(db),
		OrgTypes:   orgTypeService,
		Fields:     fieldDefService,
		Details:    orgDetailService,
		Employees:  employeeService,
		Publisher:  deps.EventBus,
		Logger:     lg,
		MaxWorkers: cfg.Bulk.MaxWorkers,
		MaxRows:    cfg.Bulk.MaxRows,
	})

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(db), tokens, cfg.Security.BCryptCost, lg)
	userService := user.NewService(userPostgres.NewUserRepository(db), orgTypeService, assignmentService, cfg.Security.BCryptCost, lg)

	files, err := parameter.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		return fmt.Errorf("upload dir: %w", err)
	}
	parameterService := parameter.NewService(parameterPostgres.NewParameterRepository(db), files, cfg.Storage.MaxUploadSize, lg)

	reportService := report.NewService(reportPostgres.NewReportRepository(deps.DB), assignmentService, lg)

	events.SubscribeAuditLog(deps.EventBus, lg)

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Handlers{
		Auth:               auth.NewHandler(base, authService),
		RBAC:               auth.NewRBACAuthorization(auth.NewAccessChecker(), lg),
		AccessResolver:     assignmentService,
		OrganizationType:   organizationtype.NewHandler(base, orgTypeService),
		FieldDefinition:    fielddefinition.NewHandler(base, fieldDefService),
		OrganizationDetail: organizationdetail.NewHandler(base, orgDetailService),
		Employee:           employee.NewHandler(base, employeeService),
		Assignment:         assignment.NewHandler(base, assignmentService),
		User:               user.NewHandler(base, userService),
		Parameter:          parameter.NewHandler(base, parameterService, cfg.Storage.MaxUploadSize),
		Report:             report.NewHandler(base, reportService),
	}, rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
		UploadDir:      cfg.Storage.UploadDir,
	}, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	lg := logger.LoggerWrapper()

	return &Dependencies{
		Config:   config,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		EventBus: events.NewEventBus(lg),
		Logger:   lg,
	}, nil
}

// initDB opens the shared pgx pool used by both sqlx and gorm.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
