package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillamqp "github.com/ThreeDotsLabs/watermill-amqp/v2/pkg/amqp"
	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	bookingActionsHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/booking_actions"
	createBookingHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/create_booking"
	createHoldHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/create_hold"
	getAvailabilityHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/get_availability"
	getBookingHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/get_booking"
	manageRulesHandler "github.com/anshddoshi27/Tithi-sub002/internal/api/handlers/manage_rules"
	"github.com/anshddoshi27/Tithi-sub002/internal/api/middleware"
	"github.com/anshddoshi27/Tithi-sub002/internal/config"
	"github.com/anshddoshi27/Tithi-sub002/internal/domain"
	"github.com/anshddoshi27/Tithi-sub002/internal/infra/cache/rulecache"
	bookingsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/bookings"
	holdsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/holds"
	outboxRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/outbox"
	paymentsRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/payments"
	rulesRepo "github.com/anshddoshi27/Tithi-sub002/internal/infra/storage/rules"
	catalogServiceClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/catalogservice"
	customerServiceClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/customerservice"
	paymentProcessorClient "github.com/anshddoshi27/Tithi-sub002/internal/integrations/paymentprocessor"
	bookingsService "github.com/anshddoshi27/Tithi-sub002/internal/service/bookings"
	rulesService "github.com/anshddoshi27/Tithi-sub002/internal/service/rules"
	"github.com/anshddoshi27/Tithi-sub002/internal/tzresolver"
	computeAvailabilityUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/compute_availability"
	confirmBookingUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/confirm_booking"
	createBookingUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_booking"
	createHoldUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/create_hold"
	finalizeBookingUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/finalize_booking"
	refundBookingUC "github.com/anshddoshi27/Tithi-sub002/internal/usecase/refund_booking"
	"github.com/anshddoshi27/Tithi-sub002/internal/worker/holdsweeper"
	"github.com/anshddoshi27/Tithi-sub002/internal/worker/outboxrelay"
	"github.com/anshddoshi27/Tithi-sub002/pkg/dbmetrics"
	"github.com/anshddoshi27/Tithi-sub002/pkg/logger"
	"github.com/anshddoshi27/Tithi-sub002/pkg/metrics"
	"github.com/anshddoshi27/Tithi-sub002/pkg/simpletxmanager"
	"github.com/anshddoshi27/Tithi-sub002/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting scheduling engine...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Подключаемся к Redis: кэш правил и очередь asynq
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to ping redis: %v", err)
	}
	log.Info("Successfully connected to redis (addr=%s)", cfg.Redis.Addr)

	// Инициализируем интеграционных клиентов
	catalogClient := catalogServiceClient.NewClient(
		cfg.CatalogService.URL,
		time.Duration(cfg.CatalogService.Timeout)*time.Second,
		log,
	)
	customerClient := customerServiceClient.NewClient(
		cfg.CustomerService.URL,
		time.Duration(cfg.CustomerService.Timeout)*time.Second,
		log,
	)
	processorClient := paymentProcessorClient.NewClient(
		cfg.PaymentProcessor.URL,
		time.Duration(cfg.PaymentProcessor.Timeout)*time.Second,
		cfg.PaymentProcessor.CircuitThreshold,
		cfg.PaymentProcessor.MaxRetries,
		log,
	)
	log.Info("Integration clients initialized (Catalog=%s, Customer=%s, Processor=%s)",
		cfg.CatalogService.URL, cfg.CustomerService.URL, cfg.PaymentProcessor.URL)

	// Инициализируем репозитории (с метриками или без)
	var (
		bookingRepository *bookingsRepo.Repository
		holdRepository    *holdsRepo.Repository
		ruleRepository    *rulesRepo.Repository
		paymentRepository *paymentsRepo.Repository
		outboxRepository  *outboxRepo.Repository
	)

	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingsRepo.NewRepository(wrappedDB)
		holdRepository = holdsRepo.NewRepository(wrappedDB)
		ruleRepository = rulesRepo.NewRepository(wrappedDB)
		paymentRepository = paymentsRepo.NewRepository(wrappedDB)
		outboxRepository = outboxRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingsRepo.NewRepository(db)
		holdRepository = holdsRepo.NewRepository(db)
		ruleRepository = rulesRepo.NewRepository(db)
		paymentRepository = paymentsRepo.NewRepository(db)
		outboxRepository = outboxRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Кэш правил и резолвер зон
	ruleCache := rulecache.New(redisClient, time.Duration(cfg.Redis.RuleCacheTTL)*time.Second, log)
	resolver := tzresolver.New(log)

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		outboxRepository,
		txMgr,
		log,
	)
	ruleSvc := rulesService.NewService(
		ruleRepository,
		ruleCache,
		txMgr,
		log,
	)

	feePolicy := domain.FeePolicy{
		PlatformFeePercent:     cfg.Fees.PlatformFeePercent,
		NoShowFeePercent:       cfg.Fees.NoShowFeePercent,
		NoShowFeeFlat:          cfg.Fees.NoShowFeeFlat,
		CancellationFeePercent: cfg.Fees.CancellationFeePercent,
		CancellationFeeFlat:    cfg.Fees.CancellationFeeFlat,
	}

	// Инициализируем use cases
	computeAvailabilityUseCase := computeAvailabilityUC.NewUseCase(
		ruleRepository,
		ruleCache,
		bookingRepository,
		holdRepository,
		catalogClient,
		resolver,
		log,
	)
	createHoldUseCase := createHoldUC.NewUseCase(
		holdRepository,
		bookingRepository,
		catalogClient,
		txMgr,
		cfg.Holds.DefaultTTLMinutes,
		log,
	)
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		holdRepository,
		outboxRepository,
		catalogClient,
		customerClient,
		txMgr,
		log,
	)
	confirmBookingUseCase := confirmBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		outboxRepository,
		processorClient,
		txMgr,
		log,
	)
	finalizeBookingUseCase := finalizeBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		outboxRepository,
		processorClient,
		txMgr,
		feePolicy,
		log,
	)
	refundBookingUseCase := refundBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		outboxRepository,
		processorClient,
		txMgr,
		log,
	)

	// Инициализируем handlers
	getAvailability := getAvailabilityHandler.NewHandler(computeAvailabilityUseCase, log)
	createHold := createHoldHandler.NewHandler(createHoldUseCase, log)
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	bookingActions := bookingActionsHandler.NewHandler(
		confirmBookingUseCase,
		finalizeBookingUseCase,
		refundBookingUseCase,
		bookingSvc,
		log,
	)
	manageRules := manageRulesHandler.NewHandler(ruleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix: все маршруты требуют X-Tenant-ID
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.RequireTenant(log))

	// --- Доступность и правила ---
	api.HandleFunc("/resources/{resourceId}/availability", getAvailability.Handle).Methods(http.MethodGet)
	api.HandleFunc("/resources/{resourceId}/rules", manageRules.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/resources/{resourceId}/rules", manageRules.HandleCreate).Methods(http.MethodPost)
	api.HandleFunc("/resources/{resourceId}/rules/copy-week", manageRules.HandleCopyWeek).Methods(http.MethodPost)
	api.HandleFunc("/rules/{ruleId}/deactivate", manageRules.HandleDeactivate).Methods(http.MethodPatch)

	// --- Холды ---
	api.HandleFunc("/holds", createHold.Handle).Methods(http.MethodPost)

	// --- Бронирования: чтение ---
	api.HandleFunc("/bookings", getBooking.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/check-in", bookingActions.HandleCheckIn).Methods(http.MethodPost)

	// --- Бронирования: мутации с Idempotency-Key ---
	keyed := api.PathPrefix("").Subrouter()
	keyed.Use(middleware.RequireIdempotencyKey(log))
	keyed.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	keyed.HandleFunc("/bookings/{bookingId}/confirm", bookingActions.HandleConfirm).Methods(http.MethodPost)
	keyed.HandleFunc("/bookings/{bookingId}/complete", bookingActions.HandleComplete).Methods(http.MethodPost)
	keyed.HandleFunc("/bookings/{bookingId}/cancel", bookingActions.HandleCancel).Methods(http.MethodPost)
	keyed.HandleFunc("/bookings/{bookingId}/no-show", bookingActions.HandleNoShow).Methods(http.MethodPost)
	keyed.HandleFunc("/bookings/{bookingId}/refund", bookingActions.HandleRefund).Methods(http.MethodPost)

	// Фоновая инфраструктура: outbox relay и уборка холдов
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	amqpConfig := watermillamqp.NewDurableQueueConfig(cfg.AMQP.URI)
	publisher, err := watermillamqp.NewPublisher(amqpConfig, watermill.NewStdLogger(false, false))
	if err != nil {
		log.Fatal("Failed to create AMQP publisher: %v", err)
	}
	defer publisher.Close()

	relay := outboxrelay.NewRelay(
		outboxRepository,
		publisher,
		txMgr,
		time.Duration(cfg.Worker.RelayIntervalSeconds)*time.Second,
		cfg.Worker.RelayBatchSize,
		log,
	)
	go relay.Run(workerCtx)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	sweeper := holdsweeper.NewSweeper(holdRepository, log)
	asynqMux := asynq.NewServeMux()
	asynqMux.HandleFunc(holdsweeper.TypeExpireStaleHolds, sweeper.HandleExpireStale)

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.Worker.Concurrency,
		Queues: map[string]int{
			"default": 10,
		},
	})
	go func() {
		if err := asynqServer.Run(asynqMux); err != nil {
			log.Fatal("Asynq server failed: %v", err)
		}
	}()

	asynqScheduler := asynq.NewScheduler(redisOpt, nil)
	sweepSpec := fmt.Sprintf("@every %ds", cfg.Worker.SweepIntervalSeconds)
	if _, err := asynqScheduler.Register(sweepSpec, holdsweeper.NewExpireStaleTask()); err != nil {
		log.Fatal("Failed to register hold sweep task: %v", err)
	}
	if err := asynqScheduler.Start(); err != nil {
		log.Fatal("Failed to start asynq scheduler: %v", err)
	}
	log.Info("Background workers started (sweep=%s, relay=%ds)", sweepSpec, cfg.Worker.RelayIntervalSeconds)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	asynqScheduler.Shutdown()
	asynqServer.Shutdown()
	cancelWorkers()

	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
