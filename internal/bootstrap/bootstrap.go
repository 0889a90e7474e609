package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/agora/internal/app/auth"
	appControllers "github.com/yigit/agora/internal/app/controllers"
	appMigrations "github.com/yigit/agora/internal/app/migrations"
	appRepos "github.com/yigit/agora/internal/app/repositories"
	appRoutes "github.com/yigit/agora/internal/app/routes"
	appServices "github.com/yigit/agora/internal/app/services"
	"github.com/yigit/agora/internal/config"
	"github.com/yigit/agora/internal/db"
	appMiddleware "github.com/yigit/agora/internal/middleware"
	pkgAuth "github.com/yigit/agora/internal/pkg/auth"
	"github.com/yigit/agora/internal/pkg/email"
	"github.com/yigit/agora/internal/pkg/filestorage"
	"github.com/yigit/agora/internal/pkg/helpers"
	"github.com/yigit/agora/internal/pkg/logger"
	"github.com/yigit/agora/internal/pkg/metrics"
	"github.com/yigit/agora/internal/pkg/notifier"
	"github.com/yigit/agora/internal/pkg/websocket"
	"github.com/yigit/agora/internal/scheduler"
	"github.com/yigit/agora/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	AuthzService   *appAuth.AuthorizationService
	FileStorage    *filestorage.LocalStorage
	Metrics        *metrics.Metrics
	Hub            *websocket.Hub
	Dispatcher     *notifier.Dispatcher
	Scheduler      *scheduler.Scheduler
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool and checks it answers.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies the bundled schema migrations.
func RunMigrations(ctx context.Context, database *db.PostgresDB, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(database.Pool, lgr).Migrate(ctx)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SetupDatabase connects, migrates and seeds the default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if err := seed.CreateDefaultData(ctx, database.Pool, lgr); err != nil {
		// Startup continues; the administrator can be created later
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes repositories, services, background workers and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	if cfg.Metrics.Enabled {
		deps.Metrics = metrics.New()
	}

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.UserRepository, deps.Repos.ClassRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Hub = websocket.NewHub(lgr.With().Str("component", "feed").Logger())
	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, lgr.With().Str("component", "mailer").Logger())

	deps.Dispatcher = notifier.NewDispatcher(notifier.Config{
		Workers:        cfg.Notifications.Workers,
		QueueSize:      cfg.Notifications.QueueSize,
		MaxRetries:     cfg.Notifications.MaxRetries,
		EnqueueTimeout: helpers.ParseDuration(cfg.Notifications.EnqueueTimeout, 200*time.Millisecond),
		DrainTimeout:   helpers.ParseDuration(cfg.Notifications.DrainTimeout, 10*time.Second),
	}, deps.Metrics, lgr.With().Str("component", "notifier").Logger(),
		notifier.NewEmailChannel(mailer),
		notifier.NewFeedChannel(deps.Hub),
	)

	deps.Services = appServices.NewServices(appServices.Options{
		Repos:      deps.Repos,
		JWT:        deps.JWTService,
		Authorizer: deps.AuthzService,
		Storage:    deps.FileStorage,
		Publisher:  deps.Dispatcher,
		Lockout: appServices.LockoutPolicy{
			MaxAttempts: cfg.Auth.MaxLoginAttempts,
			Duration:    helpers.ParseDuration(cfg.Auth.LockoutDuration, 15*time.Minute),
		},
		Banners: appServices.BannerLimits{
			MaxPerPoint: cfg.Storage.MaxBannersPerPoint,
			MaxBytes:    cfg.Storage.MaxBannerBytes,
			MinWidth:    cfg.Storage.BannerMinWidth,
			MaxWidth:    cfg.Storage.BannerMaxWidth,
			MinHeight:   cfg.Storage.BannerMinHeight,
			MaxHeight:   cfg.Storage.BannerMaxHeight,
		},
		Monitoring: appServices.MonitoringDefaults{
			Absences:     cfg.Monitoring.AbsenceThreshold,
			Notes:        cfg.Monitoring.NoteThreshold,
			AcademicYear: cfg.Monitoring.AcademicYear,
		},
		Logger: lgr,
	})

	deps.Scheduler, err = buildScheduler(cfg, deps.Services, deps.Metrics, lgr)
	if err != nil {
		return nil, err
	}

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	svc := deps.Services
	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(svc.Auth, lgr),
		User:       appControllers.NewUserController(svc.User),
		Address:    appControllers.NewAddressController(svc.Address, svc.Teaching),
		Class:      appControllers.NewClassController(svc.Class),
		Register:   appControllers.NewRegisterController(svc.Register),
		Note:       appControllers.NewNoteController(svc.Note),
		ReportCard: appControllers.NewReportCardController(svc.ReportCard),
		Enrollment: appControllers.NewEnrollmentController(svc.Enrollment, svc.Monitoring),
		Site:       appControllers.NewSiteController(svc.Site, svc.Tag, svc.Statistics),
		Banner:     appControllers.NewBannerController(svc.Banner),
		Feedback:   appControllers.NewFeedbackController(svc.Feedback),
		Convention: appControllers.NewConventionController(svc.Convention, svc.Menu),
		Tourist:    appControllers.NewTouristController(svc.Tourist, svc.Preference),
		News:       appControllers.NewNewsController(svc.News),
	}

	return deps, nil
}

func buildScheduler(cfg *config.Config, svc *appServices.Services, m *metrics.Metrics, lgr zerolog.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(m, lgr)

	jobs := []scheduler.Job{
		{
			Name: scheduler.JobMonitoringReport,
			Spec: cfg.Monitoring.Schedule,
			Task: func(ctx context.Context) (int64, error) {
				found, err := svc.Monitoring.RunReport(ctx)
				return int64(found), err
			},
		},
		{
			Name: scheduler.JobConventionExpiry,
			Spec: cfg.Monitoring.ConventionExpirySchedule,
			Task: svc.Convention.ExpireEnded,
		},
		{
			Name: scheduler.JobTokenCleanup,
			Spec: cfg.Monitoring.TokenCleanupSchedule,
			Task: svc.Auth.CleanupExpiredTokens,
		},
	}
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
	}
	return s, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, database *db.PostgresDB, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	appRoutes.SetupRouter(router, deps.Controllers, appRoutes.Options{
		AuthMiddleware: deps.AuthMiddleware,
		FeedHandler:    websocket.NewHandler(deps.Hub, lgr.With().Str("component", "feed").Logger()),
		Metrics:        deps.Metrics,
		MetricsPath:    cfg.Metrics.Path,
		StoragePath:    cfg.Server.StoragePath,
		Database:       database.Pool,
	})

	return router, nil
}
