package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_producer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// IngestResultDTO - для сообщения в очередь результатов загрузки
type IngestResultDTO struct {
	TaskID  uuid.UUID      `json:"task_id"`
	Results map[string]int `json:"results"`
}

type IngestReporterAdapter struct {
	producer   *rabbitmq_producer.Publisher
	routingKey string
}

func NewIngestReporterAdapter(producer *rabbitmq_producer.Publisher, routingKey string) (*IngestReporterAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &IngestReporterAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *IngestReporterAdapter) ReportResults(ctx context.Context, taskID uuid.UUID, stats *domain.BatchSaveStats) error {
	// 1. Извлекаем и обогащаем логгер
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "IngestReporterAdapter",
		"routing_key": a.routingKey,
		"task_id":     taskID.String(),
	})

	dto := IngestResultDTO{
		TaskID: taskID,
		Results: map[string]int{
			"saved":   stats.Saved,
			"skipped": stats.Skipped,
			"total":   stats.Saved + stats.Skipped,
		},
	}

	body, err := json.Marshal(dto)
	if err != nil {
		adapterLogger.Error("Failed to marshal ingest report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to marshal report for task %s: %w", taskID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Для сохранения сообщений при перезапуске брокера
		Timestamp:    time.Now(),
		Headers:      make(amqp.Table),
	}

	traceID := contextkeys.TraceIDFromContext(ctx)
	if traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	// Устанавливаем таймаут на операцию публикации, если контекст его не предоставляет
	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	adapterLogger.Info("Publishing ingest report for task", port.Fields{"stats": dto.Results})
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish report", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish report for task %s: %w", taskID, err)
	}

	adapterLogger.Info("Successfully published report", nil)
	return nil
}
