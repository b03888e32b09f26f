package rabbitmq_producer

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/pkg/rabbitmq/rabbitmq_common"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig конфигурация издателя
type PublisherConfig struct {
	rabbitmq_common.Config

	ExchangeName    string // Пустая строка - default exchange
	ExchangeType    string // direct, fanout, topic, headers
	DurableExchange bool

	// Если false, издатель полагается на то, что обменник уже существует
	DeclareExchangeIfMissing bool

	Logger rabbitmq_common.Logger
}

// Publisher публикует сообщения в один обменник через общее соединение
type Publisher struct {
	config  PublisherConfig
	channel *amqp.Channel

	Logger rabbitmq_common.Logger
}

// NewPublisher создает нового издателя
func NewPublisher(cfg PublisherConfig, connManager *rabbitmq_common.ConnectionManager) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = rabbitmq_common.NewNoopLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("producer: invalid config: %w", err)
	}
	if cfg.DeclareExchangeIfMissing && (cfg.ExchangeName == "" || cfg.ExchangeType == "") {
		return nil, fmt.Errorf("producer: exchange name and type are required when DeclareExchangeIfMissing is true")
	}

	_, ch, err := connManager.GetChannel()
	if err != nil {
		return nil, fmt.Errorf("producer: failed to get channel from manager: %w", err)
	}

	p := &Publisher{
		config:  cfg,
		channel: ch,
		Logger:  logger,
	}
	p.Logger.Debug("Channel obtained from ConnectionManager")

	if cfg.DeclareExchangeIfMissing {
		p.Logger.Debug("Declaring exchange", "name", cfg.ExchangeName, "type", cfg.ExchangeType)
		err = ch.ExchangeDeclare(
			cfg.ExchangeName,
			cfg.ExchangeType,
			cfg.DurableExchange,
			false, // autoDelete
			false, // internal
			false, // noWait
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("producer: failed to declare exchange '%s': %w", cfg.ExchangeName, err)
		}
	} else if cfg.ExchangeName != "" {
		p.Logger.Debug("Assuming exchange already exists", "name", cfg.ExchangeName)
	}

	return p, nil
}

// Publish публикует сообщение с ключом маршрутизации
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.channel == nil {
		return fmt.Errorf("producer: channel is closed")
	}

	err := p.channel.PublishWithContext(
		ctx,
		p.config.ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("producer: failed to publish message: %w", err)
	}
	return nil
}

// Close закрывает канал издателя
func (p *Publisher) Close() error {
	p.Logger.Debug("Producer: Closing...")
	var firstErr error

	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			p.Logger.Error(err, "Error closing channel")
			firstErr = err
		}
		p.channel = nil
	}
	p.Logger.Info("Producer closed.")
	return firstErr
}
