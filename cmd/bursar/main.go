package main

import (
	"github.com/credoworks/bursar/internal/handlers"
	"github.com/credoworks/bursar/internal/ledger"
	"github.com/credoworks/bursar/pkg/config"
	"github.com/credoworks/bursar/pkg/database"
	"github.com/credoworks/bursar/pkg/events"
	"github.com/credoworks/bursar/pkg/logging"
	"github.com/credoworks/bursar/pkg/middleware"
	"github.com/credoworks/bursar/pkg/monitoring"
	"github.com/credoworks/bursar/pkg/server"
	"github.com/credoworks/bursar/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("bursar")

	// Load environment variables
	config.LoadEnv(logger)

	buildInfo := version.GetInfo()
	logger.WithFields(logging.Fields{
		"version":    buildInfo.Version,
		"git_commit": version.GetShortCommit(),
		"build_date": buildInfo.BuildDate,
	}).Info("Starting Bursar (Community Credit Ledger)")

	dbURL := config.RequireEnv("DATABASE_URL")
	serviceToken := config.RequireEnv("SERVICE_TOKEN")
	defaultSecret := config.GetEnv("DEFAULT_SECRET", "1111")
	kafkaBrokers := config.GetEnvSlice("KAFKA_BROKERS", nil)

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	if config.GetEnvBool("DB_AUTO_MIGRATE", false) {
		if err := database.EnsureSchema(db, logger); err != nil {
			logger.WithError(err).Fatal("Failed to apply database schema")
		}
	}

	// Event emitter: Kafka when brokers are configured, log-only otherwise
	var emitter events.Emitter
	var kafkaEmitter *events.KafkaEmitter
	if len(kafkaBrokers) > 0 {
		var err error
		kafkaEmitter, err = events.NewKafkaEmitter(kafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka emitter")
		}
		defer kafkaEmitter.Close()
		emitter = kafkaEmitter
	} else {
		logger.Warn("No Kafka brokers configured; events will only be logged")
		emitter = events.NewLogEmitter(logger)
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("bursar", version.Version)
	healthChecker.SetBuildInfo(version.GetShortCommit(), buildInfo.BuildDate)
	metricsCollector := monitoring.NewMetricsCollector("bursar", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":  dbURL,
		"SERVICE_TOKEN": serviceToken,
	}))
	if kafkaEmitter != nil {
		healthChecker.AddCheck("kafka", monitoring.KafkaProducerHealthCheck(kafkaEmitter.Client()))
	}

	// Create custom ledger metrics
	metrics := &handlers.BursarMetrics{
		Transfers:      metricsCollector.NewCounter("transfers_total", "Transfer operations", []string{"status"}),
		Logins:         metricsCollector.NewCounter("logins_total", "Login operations", []string{"status"}),
		Provisions:     metricsCollector.NewCounter("provisions_total", "Account provisioning operations", []string{"status"}),
		SecurityEvents: metricsCollector.NewCounter("security_events_total", "Security events raised to admins", []string{"type"}),
	}

	// Create database metrics
	metrics.DBQueries, metrics.DBDuration, metrics.DBConnections = metricsCollector.CreateDatabaseMetrics()

	// Initialize the ledger core and handlers
	store := ledger.NewStore(db, logger, emitter)
	handlers.Init(store, logger, emitter, metrics, defaultSecret)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "bursar", healthChecker, metricsCollector)

	// All command routes are service-to-service: the chat dispatcher is the
	// only caller and performs user-level authorization itself.
	serviceAPI := router.Group("/v1")
	serviceAPI.Use(middleware.ServiceAuthMiddleware(serviceToken))
	{
		serviceAPI.POST("/login", handlers.Login)
		serviceAPI.POST("/logout", handlers.Logout)
		serviceAPI.GET("/accounts/session/:session_id", handlers.GetBalance)
		serviceAPI.GET("/accounts/:melon_id/history", handlers.GetHistory)
		serviceAPI.POST("/transfer", handlers.CreateTransfer)

		// Administrative operations (role-gated by the dispatcher)
		serviceAPI.POST("/accounts", handlers.CreateAccount)
		serviceAPI.PUT("/accounts/:melon_id/credential", handlers.SetCredential)
		serviceAPI.PUT("/accounts/:melon_id/identity", handlers.RenameIdentity)
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("bursar", "18010")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
