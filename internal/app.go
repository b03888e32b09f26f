package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	logger_adapter "github.com/konomissira/missing-records-api/internal/adapters/logger"
	postgres_adapter "github.com/konomissira/missing-records-api/internal/adapters/postgres"
	rabbitmq_adapter "github.com/konomissira/missing-records-api/internal/adapters/rabbitmq"
	"github.com/konomissira/missing-records-api/internal/adapters/rest"
	"github.com/konomissira/missing-records-api/internal/configs"
	"github.com/konomissira/missing-records-api/internal/constants"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/internal/core/usecase"

	fluentlogger "github.com/konomissira/missing-records-api/pkg/fluentlogger"
	"github.com/konomissira/missing-records-api/pkg/postgres"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_common"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_consumer"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	dbPool       *pgxpool.Pool
	apiServer    *rest.Server
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	processedRecordsListener port.EventListenerPort
	ingestResultsProducer    *rabbitmq_producer.Publisher
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// 3. Инициализация низкоуровневых зависимостей
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	if err := postgres_adapter.RunMigrations(context.Background(), dbPool, appConfig.Database.MigrationsPath); err != nil {
		appLogger.Error("Failed to apply migrations", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	appLogger.Info("Database migrations applied.", nil)

	batchRepository, err := postgres_adapter.NewPostgresBatchRepository(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres batch repository", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres batch repository: %w", err)
	}

	recordRepository, err := postgres_adapter.NewPostgresRecordRepository(dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres record repository", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create postgres record repository: %w", err)
	}

	appLogger.Info("Postgres repositories initialized.", nil)

	producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
	pkgLoggerBridge := rabbitmq_adapter.NewPkgLoggerBridge(producerLogger)

	connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
	connManager, err := rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, connManagerBridge)
	if err != nil {
		appLogger.Error("Failed to create connection manager", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	producerCfg := rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             "records_exchange",
		ExchangeType:             "direct",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,

		Logger: pkgLoggerBridge,
	}
	eventProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
	if err != nil {
		appLogger.Error("Failed to create event producer", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	appLogger.Info("RabbitMQ Event Producer initialized.", nil)

	ingestReporterAdapter, err := rabbitmq_adapter.NewIngestReporterAdapter(eventProducer, constants.RoutingKeyIngestResults)
	if err != nil {
		appLogger.Error("Failed to create ingest reporter adapter", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to create ingest reporter adapter: %w", err)
	}
	appLogger.Info("All outgoing adapters initialized.", nil)

	// ИНИЦИАЛИЗАЦИЯ USE CASES (ядра бизнес-логики)
	createBatchUseCase := usecase.NewCreateBatchUseCase(batchRepository)
	getBatchesUseCase := usecase.NewGetBatchesUseCase(batchRepository)
	deleteBatchUseCase := usecase.NewDeleteBatchUseCase(batchRepository)

	saveRecordUseCase := usecase.NewSaveRecordUseCase(batchRepository, recordRepository, ingestReporterAdapter)
	getRecordsUseCase := usecase.NewGetRecordsUseCase(batchRepository, recordRepository)
	purgeRecordsUseCase := usecase.NewPurgeRecordsUseCase(batchRepository, recordRepository)

	reconcileBatchUseCase := usecase.NewReconcileBatchUseCase(batchRepository, recordRepository)
	getProcessingStatusUseCase := usecase.NewGetProcessingStatusUseCase(batchRepository, recordRepository)
	getBatchStatisticsUseCase := usecase.NewGetBatchStatisticsUseCase(batchRepository, recordRepository)

	appLogger.Info("All use cases initialized.", nil)

	// 4. ИНИЦИАЛИЗАЦИЯ ВХОДЯЩИХ АДАПТЕРОВ (те, которые ВЫЗЫВАЮТ наше ядро)
	processedConsumerCfg := rabbitmq_consumer.ConsumerConfig{
		Config:              rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		QueueName:           constants.QueueProcessedRecords,
		DurableQueue:        true,
		ExchangeNameForBind: "records_exchange",
		RoutingKeyForBind:   constants.RoutingKeyProcessedRecords,
		PrefetchCount:       1,
		ConsumerTag:         "record-saver-adapter",
		DeclareQueue:        true,

		EnableRetryMechanism: true,

		// Уникальные "сателлиты" для этой очереди
		RetryExchange: constants.QueueProcessedRecords + "_retry_ex",
		RetryQueue:    constants.QueueProcessedRecords + "_retry_wait_10s",
		RetryTTL:      10000, // 10 секунд в миллисекундах

		FinalDLXExchange:   constants.FinalDLXExchange,
		FinalDLQ:           constants.FinalDLQ,
		FinalDLQRoutingKey: constants.FinalDLQRoutingKey,

		MaxRetries: 3,
	}
	processedRecordsListener, err := rabbitmq_adapter.NewProcessedRecordsConsumerAdapter(processedConsumerCfg, saveRecordUseCase, baseLogger, connManager)
	if err != nil {
		appLogger.Error("Failed to create Processed Records listener", err, nil)
		dbPool.Close()
		return nil, err
	}
	appLogger.Info("Processed Records Events Listener initialized.", nil)

	// REST API Server
	healthHandlers := rest.NewHealthHandler(appConfig.AppName, dbPool)
	batchHandlers := rest.NewBatchHandler(createBatchUseCase, getBatchesUseCase, deleteBatchUseCase)
	recordHandlers := rest.NewRecordHandler(saveRecordUseCase, getRecordsUseCase, purgeRecordsUseCase)
	analysisHandlers := rest.NewAnalysisHandler(reconcileBatchUseCase, getProcessingStatusUseCase, getBatchStatisticsUseCase)

	apiServer := rest.NewServer(appConfig.Rest.PORT, healthHandlers, batchHandlers, recordHandlers, analysisHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	// 5. Собираем приложение
	application := &App{
		config:                   appConfig,
		dbPool:                   dbPool,
		apiServer:                apiServer,
		processedRecordsListener: processedRecordsListener,
		ingestResultsProducer:    eventProducer,

		fluentClient: fluentClient,
		logger:       appLogger,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Ждем завершения всех запущенных горутин (слушателей)
		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		// Теперь безопасно закрываем ресурсы
		if a.processedRecordsListener != nil {
			if err := a.processedRecordsListener.Close(); err != nil {
				a.logger.Error("Error closing processed records listener", err, nil)
			}
		}

		if a.ingestResultsProducer != nil {
			if err := a.ingestResultsProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// Логируем в stdout, так как fluent может быть уже недоступен
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	// Функция-хелпер для запуска слушателей
	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	wg.Add(1)
	go startListener("Processed Records Events Listener", a.processedRecordsListener)

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
