package port

import "context"

// EventListenerPort - контракт для входящих адаптеров, слушающих брокер сообщений.
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
