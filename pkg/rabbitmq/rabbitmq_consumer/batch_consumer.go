package rabbitmq_consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BatchMessageHandler обрабатывает пачку доставок целиком.
// Ненулевая ошибка означает, что пачку нужно вернуть в очередь (или в ретрай).
type BatchMessageHandler func(deliveries []amqp.Delivery) error

// BatchConsumer копит сообщения до batchSize или batchTimeout и отдает
// их обработчику одной пачкой.
type BatchConsumer struct {
	base         *baseConsumer
	handler      BatchMessageHandler
	batchSize    int
	batchTimeout time.Duration
}

// NewBatchConsumer создает нового пакетного потребителя.
func NewBatchConsumer(cfg ConsumerConfig, handler BatchMessageHandler, batchSize int, batchTimeout time.Duration, connManager *rabbitmq_common.ConnectionManager) (*BatchConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("batch Consumer: message handler is required")
	}
	if batchSize < 1 {
		batchSize = 1
	}
	// Prefetch не должен быть меньше размера пачки, иначе пачка не наберется
	if cfg.PrefetchCount < batchSize {
		cfg.PrefetchCount = batchSize
	}

	base, err := newBaseConsumer(cfg, connManager)
	if err != nil {
		return nil, fmt.Errorf("batch Consumer: %w", err)
	}

	return &BatchConsumer{
		base:         base,
		handler:      handler,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
	}, nil
}

// StartConsuming запускает потребление. Блокируется до отмены контекста
// или закрытия соединения.
func (c *BatchConsumer) StartConsuming(ctx context.Context) error {
	if c.base.channel == nil || c.base.connection.IsClosed() {
		return fmt.Errorf("batch Consumer: not connected")
	}

	msgs, err := c.base.channel.Consume(
		c.base.actualQueueName,
		c.base.config.ConsumerTag,
		false, // auto-ack = false
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("batch Consumer: failed to register a consumer: %w", err)
	}

	c.base.Logger.Info("[*] Waiting for messages on queue",
		"queue_name", c.base.actualQueueName,
		"batch_size", c.batchSize,
		"batch_timeout", c.batchTimeout)

	c.base.wg.Add(1)
	go c.collectLoop(ctx, msgs)

	notifyClose := make(chan *amqp.Error)
	c.base.connection.NotifyClose(notifyClose)

	select {
	case <-ctx.Done():
		c.base.Logger.Info("Context cancelled for consumer. Shutting down.",
			"consumer_tag", c.base.config.ConsumerTag)
		return nil

	case err := <-notifyClose:
		c.base.Logger.Error(err, "Connection closed for consumer",
			"consumer_tag", c.base.config.ConsumerTag)
		return err
	}
}

// collectLoop копит доставки и отдает их в processBatch по заполнению
// пачки или срабатыванию таймера.
func (c *BatchConsumer) collectLoop(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer c.base.wg.Done()

	batch := make([]amqp.Delivery, 0, c.batchSize)
	timer := time.NewTimer(c.batchTimeout)
	// Таймер стартует только с первым сообщением пачки
	if !timer.Stop() {
		<-timer.C
	}

	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		c.base.Logger.Info("Processing batch", "reason", reason, "batch_size", len(batch))
		c.processBatch(batch)
		batch = make([]amqp.Delivery, 0, c.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			c.base.Logger.Info("Context cancelled. Processing final batch...")
			flush("shutdown")
			return

		case msg, ok := <-msgs:
			if !ok {
				c.base.Logger.Info("Deliveries channel closed. Processing final batch...")
				flush("channel closed")
				return
			}

			if len(batch) == 0 {
				timer.Reset(c.batchTimeout)
			}
			batch = append(batch, msg)

			if len(batch) >= c.batchSize {
				if !timer.Stop() {
					<-timer.C
				}
				flush("batch full")
			}

		case <-timer.C:
			flush("timeout")
		}
	}
}

// processBatch вызывает обработчик и подтверждает либо возвращает пачку.
func (c *BatchConsumer) processBatch(batch []amqp.Delivery) {
	if len(batch) == 0 {
		return
	}

	lastTag := batch[len(batch)-1].DeliveryTag

	if err := c.handler(batch); err == nil {
		// Успех: подтверждаем всю пачку одним Ack
		_ = c.base.channel.Ack(lastTag, true)
		c.base.Logger.Info("Successfully Ack'd batch of messages", "batch_size", len(batch))
		return
	} else {
		c.base.Logger.Error(err, "Handler returned error for batch")
	}

	if !c.base.config.EnableRetryMechanism {
		_ = c.base.channel.Nack(lastTag, true, false) // multiple=true, requeue=false
		c.base.Logger.Info("Retry disabled. Nacking entire batch without requeue.")
		return
	}

	// Ретраи включены: судьба каждого сообщения решается индивидуально
	for _, d := range batch {
		deaths := c.base.deathCount(d, c.base.actualQueueName)
		if deaths < int64(c.base.config.MaxRetries) {
			c.base.Logger.Info("Nacking message for retry",
				"delivery_tag", d.DeliveryTag,
				"death_count", deaths)
			_ = c.base.channel.Nack(d.DeliveryTag, false, false) // single, requeue=false -> retry-loop
			continue
		}

		// Лимит исчерпан: перекладываем в финальный DLQ и подтверждаем оригинал
		c.base.Logger.Info("Max retries reached for message. Publishing to final DLX.",
			"delivery_tag", d.DeliveryTag)

		err := c.base.finalDlxPublisher.Publish(
			context.Background(),
			c.base.config.FinalDLQRoutingKey,
			amqp.Publishing{
				ContentType:  d.ContentType,
				Body:         d.Body,
				Headers:      d.Headers,
				Timestamp:    time.Now(),
				DeliveryMode: amqp.Persistent,
			},
		)
		if err != nil {
			c.base.Logger.Error(err, "Failed to publish to final DLX. Nacking to trigger retry loop again.",
				"delivery_tag", d.DeliveryTag)
			_ = d.Nack(false, false)
		} else {
			c.base.Logger.Info("Successfully published to final DLX. Acking original message",
				"delivery_tag", d.DeliveryTag)
			_ = d.Ack(false)
		}
	}
}

// Close дожидается завершения обработки последней пачки и закрывает канал.
func (c *BatchConsumer) Close() error {
	c.base.Logger.Info("Closing consumer")
	return c.base.Close()
}
