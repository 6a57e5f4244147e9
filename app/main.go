package main

import (
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/mailservice"
	"github.com/sushihentaime/bloghub/internal/uploadservice"
	"github.com/sushihentaime/bloghub/internal/userservice"
)

type application struct {
	config   *Config
	logger   *slog.Logger
	metrics  *common.Metrics
	registry *prometheus.Registry
	// uploadDir is served under /uploads/ when images are kept on disk.
	uploadDir string

	userService    *userservice.UserService
	blogService    *blogservice.BlogService
	commentService *commentservice.CommentService
	uploadService  *uploadservice.UploadService
	mailService    *mailservice.MailService

	// done is closed by stopBackground to end the goroutines started through background.
	done     chan struct{}
	bg       sync.WaitGroup
	stopOnce sync.Once
}

func main() {
	configPath := flag.String("config", ".env", "path to the dotenv configuration file")
	runMigrations := flag.Bool("migrate", false, "apply database migrations before serving")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := common.NewLogger(common.LoggerParams{
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		FileName:    cfg.LogFile,
	})

	db, err := common.NewDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBMaxIdleTime)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if *runMigrations || cfg.MigrationsPath != "" {
		source := cfg.MigrationsPath
		if source == "" {
			source = "file://migrations"
		}

		if _, err := common.Migrate(source, common.DSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)); err != nil {
			logger.Error("failed to apply migrations", slog.String("source", source), slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.String("source", source))
	}

	broker, err := common.NewMessageBroker(cfg.rabbitMQURI())
	if err != nil {
		logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer broker.Close()

	err = common.SetupBlogExchange(broker)
	if err != nil {
		logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app, err := newApplication(cfg, logger, db, broker, broker)
	if err != nil {
		logger.Error("failed to initialize the application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = app.mailService.Start()
	if err != nil {
		logger.Error("failed to start the mail consumers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	err = app.serve()
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newApplication wires the services together. The mail consumers are not started.
func newApplication(cfg *Config, logger *slog.Logger, db *sql.DB, producer common.MessageProducer, consumer common.MessageConsumer) (*application, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := common.NewMetrics("bloghub", "api", registry)

	c := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	tokens := userservice.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	app := &application{
		config:         cfg,
		logger:         logger,
		metrics:        metrics,
		registry:       registry,
		userService:    userservice.NewUserService(db, producer, c, tokens, logger),
		blogService:    blogservice.NewBlogService(db, c, metrics, logger),
		commentService: commentservice.NewCommentService(db, producer, metrics, logger),
		done:           make(chan struct{}),
	}

	mailService, err := mailservice.NewMailService(consumer, cfg.MailHost, cfg.MailUser, cfg.MailPassword, cfg.MailSender, cfg.MailPort, metrics, logger)
	if err != nil {
		return nil, err
	}
	app.mailService = mailService

	store, err := app.imageStore()
	if err != nil {
		return nil, err
	}
	app.uploadService = uploadservice.NewUploadService(store, metrics, logger)

	return app, nil
}

func (app *application) background(fn func()) {
	app.bg.Add(1)

	go func() {
		defer app.bg.Done()
		fn()
	}()
}

// stopBackground closes done and waits for the background goroutines to return. It is safe to call more than once.
func (app *application) stopBackground() {
	app.stopOnce.Do(func() {
		close(app.done)
	})

	app.bg.Wait()
}

// imageStore prefers Cloudinary and falls back to the local upload directory.
func (app *application) imageStore() (uploadservice.ImageStore, error) {
	if app.config.useCloudinary() {
		app.logger.Info("storing images on cloudinary", slog.String("folder", uploadservice.Folder))
		return uploadservice.NewCloudinaryStore(app.config.CloudinaryCloudName, app.config.CloudinaryAPIKey, app.config.CloudinaryAPISecret)
	}

	store, err := uploadservice.NewDiskStore(app.config.UploadDir, app.config.UploadBaseURL)
	if err != nil {
		return nil, err
	}
	app.uploadDir = store.Dir()
	app.logger.Info("storing images on disk", slog.String("dir", app.uploadDir))

	return store, nil
}
