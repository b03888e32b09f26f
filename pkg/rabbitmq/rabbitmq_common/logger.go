package rabbitmq_common

// Logger - минимальный интерфейс логирования для инфраструктуры RabbitMQ.
// Приложение подставляет сюда адаптер своего логгера; по умолчанию noop.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(err error, msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{})            {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})             {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})             {}
func (noopLogger) Error(err error, msg string, keysAndValues ...interface{}) {}

// NewNoopLogger возвращает логгер, который ничего не делает.
func NewNoopLogger() Logger {
	return noopLogger{}
}
