package rabbitmq_consumer

import (
	"fmt"
	"sync"

	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_common"
	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_producer"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConsumerConfig конфигурация потребителя очереди
type ConsumerConfig struct {
	rabbitmq_common.Config

	// Очередь
	QueueName    string
	DeclareQueue bool // Объявлять ли очередь при старте
	DurableQueue bool
	QueueArgs    amqp.Table // Дополнительные аргументы очереди (x-*)

	// Привязка к обменнику (пустое имя - без привязки)
	ExchangeNameForBind string
	RoutingKeyForBind   string

	// QoS и идентификация потребителя
	PrefetchCount int // 0 или меньше - без ограничений
	ConsumerTag   string

	// Ретраи: основная очередь -> retry exchange -> wait-очередь с TTL ->
	// обратно в основной обменник; после MaxRetries - в финальный DLX/DLQ
	EnableRetryMechanism bool
	RetryExchange        string
	RetryQueue           string
	RetryTTL             int // TTL wait-очереди в миллисекундах
	FinalDLXExchange     string
	FinalDLQ             string
	FinalDLQRoutingKey   string
	MaxRetries           int

	Logger rabbitmq_common.Logger
}

func (cfg ConsumerConfig) validate() error {
	if err := cfg.Config.Validate(); err != nil {
		return err
	}
	if !cfg.DeclareQueue && cfg.QueueName == "" {
		return fmt.Errorf("queue name is required if DeclareQueue is false")
	}
	if cfg.EnableRetryMechanism {
		if cfg.RetryExchange == "" || cfg.RetryQueue == "" {
			return fmt.Errorf("retry exchange and retry queue are required when retries are enabled")
		}
		if cfg.FinalDLXExchange == "" || cfg.FinalDLQ == "" {
			return fmt.Errorf("final DLX and DLQ are required when retries are enabled")
		}
	}
	return nil
}

// baseConsumer - общая часть: канал, объявление топологии, учет ретраев
type baseConsumer struct {
	config            ConsumerConfig
	connection        *amqp.Connection
	channel           *amqp.Channel
	actualQueueName   string // Имя очереди, возвращенное сервером
	finalDlxPublisher *rabbitmq_producer.Publisher
	wg                sync.WaitGroup // Для graceful shutdown

	Logger rabbitmq_common.Logger
}

func newBaseConsumer(cfg ConsumerConfig, connManager *rabbitmq_common.ConnectionManager) (*baseConsumer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("base Consumer: invalid config: %w", err)
	}

	c := &baseConsumer{
		config: cfg,
		Logger: logger,
	}

	conn, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("base Consumer: failed to get channel from manager: %w", err)
	}
	c.connection = conn // Для NotifyClose
	c.channel = ch
	c.Logger.Debug("Channel obtained from ConnectionManager")

	if err := c.setupTopology(); err != nil {
		_ = c.channel.Close()
		return nil, fmt.Errorf("base Consumer: topology setup failed: %w", err)
	}

	if cfg.EnableRetryMechanism {
		// Отдельный publisher для финального DLX (сам обменник уже объявлен)
		dlxPublisher, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:       rabbitmq_common.Config{URL: cfg.URL},
			ExchangeName: cfg.FinalDLXExchange,
		}, connManager)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("base Consumer: failed to create final DLX publisher: %w", err)
		}
		c.finalDlxPublisher = dlxPublisher
	}

	return c, nil
}

// setupTopology объявляет очередь, привязку и инфраструктуру ретраев
func (c *baseConsumer) setupTopology() error {
	if c.config.PrefetchCount > 0 {
		c.Logger.Debug("Setting QoS", "prefetch_count", c.config.PrefetchCount)
		if err := c.channel.Qos(c.config.PrefetchCount, 0, false); err != nil {
			return fmt.Errorf("failed to set QoS: %w", err)
		}
	}

	queueArgs := c.config.QueueArgs
	if c.config.EnableRetryMechanism {
		if queueArgs == nil {
			queueArgs = amqp.Table{}
		}
		// "мертвые" сообщения из основной очереди уходят в retry-обменник
		queueArgs["x-dead-letter-exchange"] = c.config.RetryExchange
	}

	c.actualQueueName = c.config.QueueName
	if c.config.DeclareQueue {
		c.Logger.Debug("Declaring queue", "name", c.config.QueueName, "durable", c.config.DurableQueue)
		q, err := c.channel.QueueDeclare(
			c.config.QueueName,
			c.config.DurableQueue,
			false, // autoDelete
			false, // exclusive
			false, // noWait
			queueArgs,
		)
		if err != nil {
			return fmt.Errorf("failed to declare queue '%s': %w", c.config.QueueName, err)
		}
		c.actualQueueName = q.Name
	}

	if c.config.ExchangeNameForBind != "" {
		c.Logger.Debug("Binding queue to exchange",
			"queue_name", c.actualQueueName,
			"exchange_name", c.config.ExchangeNameForBind,
			"routing_key", c.config.RoutingKeyForBind,
		)
		err := c.channel.QueueBind(
			c.actualQueueName,
			c.config.RoutingKeyForBind,
			c.config.ExchangeNameForBind,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("failed to bind queue '%s' to exchange '%s': %w",
				c.actualQueueName, c.config.ExchangeNameForBind, err)
		}
	}

	if c.config.EnableRetryMechanism {
		if err := c.setupRetryTopology(); err != nil {
			return err
		}
	}

	c.Logger.Debug("Setup complete", "queue", c.actualQueueName)
	return nil
}

// setupRetryTopology объявляет retry-обменник, wait-очередь и финальный DLX/DLQ
func (c *baseConsumer) setupRetryTopology() error {
	c.Logger.Debug("Declaring final DLX", "name", c.config.FinalDLXExchange)
	if err := c.channel.ExchangeDeclare(c.config.FinalDLXExchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLX: %w", err)
	}

	c.Logger.Debug("Declaring final DLQ", "name", c.config.FinalDLQ)
	if _, err := c.channel.QueueDeclare(c.config.FinalDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare final DLQ: %w", err)
	}

	if err := c.channel.QueueBind(c.config.FinalDLQ, c.config.FinalDLQRoutingKey, c.config.FinalDLXExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind final DLQ: %w", err)
	}

	c.Logger.Debug("Declaring retry exchange", "name", c.config.RetryExchange)
	if err := c.channel.ExchangeDeclare(c.config.RetryExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare retry exchange: %w", err)
	}

	// Wait-очередь держит сообщение RetryTTL миллисекунд и возвращает его
	// в основной обменник
	c.Logger.Debug("Declaring retry-wait queue with TTL", "name", c.config.RetryQueue, "ttl", c.config.RetryTTL)
	_, err := c.channel.QueueDeclare(
		c.config.RetryQueue,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-message-ttl":          int32(c.config.RetryTTL),
			"x-dead-letter-exchange": c.config.ExchangeNameForBind,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare retry-wait queue: %w", err)
	}

	if err := c.channel.QueueBind(c.config.RetryQueue, "", c.config.RetryExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind retry-wait queue: %w", err)
	}

	return nil
}

// deathCount возвращает, сколько раз сообщение умирало в указанной очереди
// (по заголовку x-death)
func (c *baseConsumer) deathCount(d amqp.Delivery, queueName string) int64 {
	if d.Headers == nil {
		return 0
	}
	deaths, ok := d.Headers["x-death"].([]interface{})
	if !ok {
		return 0
	}
	// x-death хранит запись на каждую очередь; последняя смерть была
	// в wait-очереди, нас интересует счетчик основной очереди
	for _, death := range deaths {
		tbl, ok := death.(amqp.Table)
		if !ok {
			continue
		}
		if queue, ok := tbl["queue"].(string); ok && queue == queueName {
			if count, ok := tbl["count"].(int64); ok {
				return count
			}
		}
	}
	return 0
}

// Close дожидается обработчиков и закрывает канал
func (c *baseConsumer) Close() error {
	c.Logger.Debug("Waiting for message handlers to finish...")
	c.wg.Wait()
	c.Logger.Debug("All message handlers finished")

	var firstErr error

	if c.finalDlxPublisher != nil {
		if err := c.finalDlxPublisher.Close(); err != nil {
			c.Logger.Error(err, "Error closing final DLX publisher")
			firstErr = err
		}
	}

	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		c.channel = nil
	}

	c.Logger.Info("Consumer closed")
	return firstErr
}
