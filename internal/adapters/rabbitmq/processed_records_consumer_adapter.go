package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/contracts"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/internal/core/port/usecases_port"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_common"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// ingestGroup - группа записей одного события: одна партия, одна задача
type ingestGroup struct {
	batchID int64
	taskID  uuid.UUID
	records []domain.Record
}

// ProcessedRecordsConsumerAdapter - это входящий адаптер, который слушает очередь
// с обработанными записями и вызывает use case для их сохранения
type ProcessedRecordsConsumerAdapter struct {
	consumer rabbitmq_consumer.Consumer
	useCase  usecases_port.SaveRecordUseCase
	logger   port.LoggerPort
}

// NewProcessedRecordsConsumerAdapter создает новый адаптер
func NewProcessedRecordsConsumerAdapter(
	consumerCfg rabbitmq_consumer.ConsumerConfig,
	useCase usecases_port.SaveRecordUseCase,
	logger port.LoggerPort,
	connManager *rabbitmq_common.ConnectionManager,
) (*ProcessedRecordsConsumerAdapter, error) {

	adapter := &ProcessedRecordsConsumerAdapter{
		useCase: useCase,
		logger:  logger,
	}

	// Создаем логгер для pkg-уровня с контекстом нашего компонента
	pkgLogger := logger.WithFields(port.Fields{"component": "rabbitmq_batch_consumer", "consumer_tag": consumerCfg.ConsumerTag})
	consumerCfg.Logger = NewPkgLoggerBridge(pkgLogger)

	// Создаем consumer, передавая ему метод этого адаптера как обработчик
	consumer, err := rabbitmq_consumer.NewBatchConsumer(consumerCfg, adapter.batchMessageHandler, 100, 10*time.Second, connManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ consumer for processed records: %w", err)
	}
	adapter.consumer = consumer

	return adapter, nil
}

// batchMessageHandler - обработчик, который принимает срез сообщений.
func (a *ProcessedRecordsConsumerAdapter) batchMessageHandler(deliveries []amqp.Delivery) error {
	if len(deliveries) == 0 {
		return nil // Пустая пачка, ничего не делаем
	}

	traceID, _ := deliveries[0].Headers["x-trace-id"].(string)
	if traceID == "" {
		traceID = uuid.New().String()
	}

	// Генерируем уникальный ID для этой конкретной операции батчинга
	ingestID := uuid.New().String()

	// Создаем базовый логгер для всей операции
	batchLogger := a.logger.WithFields(port.Fields{
		"trace_id":     traceID, // сквозная трассировка
		"ingest_id":    ingestID,
		"batch_size":   len(deliveries),
		"adapter_name": "ProcessedRecordsConsumerAdapter",
	})

	// Создаем контекст и кладем в него логгер и trace_id
	ctx := context.Background()
	ctx = contextkeys.ContextWithLogger(ctx, batchLogger)
	ctx = contextkeys.ContextWithTraceID(ctx, traceID)

	batchLogger.Info("Received batch of messages to process.", nil)

	// Группируем записи: одна партия + одна задача = один вызов BatchSave
	groups := make(map[string]*ingestGroup)

	for _, d := range deliveries {
		event, err := a.unmarshalEvent(d, batchLogger)
		if err != nil {
			// Если хотя бы одно сообщение плохое, возвращаем ошибку, чтобы вся пачка вернулась в очередь (и в итоге попала в DLX)
			return err
		}

		key := fmt.Sprintf("%d/%s", event.BatchID, event.TaskID)
		group, ok := groups[key]
		if !ok {
			group = &ingestGroup{batchID: event.BatchID, taskID: event.TaskID}
			groups[key] = group
		}

		for _, item := range event.Records {
			status, err := domain.ParseRecordStatus(item.Status)
			if err != nil {
				batchLogger.Error("Event contains record with invalid status", err, port.Fields{"status": item.Status})
				return err
			}
			group.records = append(group.records, domain.Record{
				BatchID:  event.BatchID,
				RecordID: item.RecordID,
				Status:   status,
				Metadata: item.Metadata,
			})
		}
	}

	if len(groups) == 0 {
		batchLogger.Info("No valid records in batch to save.", nil)
		return nil
	}

	// вызываем BatchSave для каждой группы
	for _, group := range groups {
		groupLogger := batchLogger.WithFields(port.Fields{
			"task_id":  group.taskID.String(),
			"batch_id": group.batchID,
		})
		groupLogger.Info("Calling BatchSave for records from event...", port.Fields{"record_count": len(group.records)})

		if _, err := a.useCase.BatchSave(ctx, group.batchID, group.records, group.taskID); err != nil {
			groupLogger.Error("BatchSave failed, the entire batch will be requeued.", err, nil)
			// Если хотя бы одна группа не сохранилась, возвращаем ошибку, чтобы весь батч обработался снова
			return err
		}
	}

	batchLogger.Info("Batch processed successfully.", nil)
	return nil
}

// unmarshalEvent - функция для разбора сообщения
func (a *ProcessedRecordsConsumerAdapter) unmarshalEvent(d amqp.Delivery, parentLogger port.LoggerPort) (*IncomingEventDTO, error) {
	msgLogger := parentLogger.WithFields(port.Fields{
		"message_id":        d.MessageId,
		"original_trace_id": d.Headers["x-trace-id"],
	})

	// Валидация по схеме
	eventType, _ := d.Headers["event-type"].(string)
	eventVersion, _ := d.Headers["event-version"].(string)
	if err := contracts.ValidateEvent(eventType, eventVersion, d.Body); err != nil {
		msgLogger.Error("Message failed schema validation. Rejecting.", err, nil)
		return nil, err
	}

	// Десериализация в DTO
	var dto IncomingEventDTO
	if err := json.Unmarshal(d.Body, &dto); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incoming event DTO: %w", err)
	}

	return &dto, nil
}

// Start реализует EventListenerPort, запуская прослушивание очереди
func (a *ProcessedRecordsConsumerAdapter) Start(ctx context.Context) error {
	return a.consumer.StartConsuming(ctx)
}

// Close реализует EventListenerPort, корректно останавливая консьюмера
func (a *ProcessedRecordsConsumerAdapter) Close() error {
	return a.consumer.Close()
}
