package rabbitmq_common

import (
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	dialTimeout       = 15 * time.Second
	reconnectInterval = 10 * time.Second
)

// ConnectionManager держит единственное соединение с RabbitMQ на процесс.
// Продюсер и консьюмеры открывают каналы поверх этого соединения.
type ConnectionManager struct {
	url        string
	connection *amqp.Connection
	mutex      sync.RWMutex
	done       chan struct{}
	Logger     Logger
}

var (
	managerInstance *ConnectionManager
	once            sync.Once
)

// GetManager создает или возвращает глобальный экземпляр менеджера (Синглтон)
func GetManager(url string, logger Logger) (*ConnectionManager, error) {
	var initErr error

	once.Do(func() {
		if logger == nil {
			logger = NewNoopLogger()
		}
		managerInstance = &ConnectionManager{
			url:    url,
			done:   make(chan struct{}),
			Logger: logger,
		}
		if _, err := managerInstance.getConnection(); err != nil {
			logger.Error(err, "Initial connection failed")
			initErr = fmt.Errorf("initial connection failed: %w", err)
			return
		}
		// Фоновый мониторинг соединения, останавливается в Close
		go managerInstance.watchConnection()
	})

	if initErr != nil {
		return nil, initErr
	}

	return managerInstance, nil
}

// getConnection возвращает живое соединение или устанавливает новое
func (m *ConnectionManager) getConnection() (*amqp.Connection, error) {
	m.mutex.RLock()
	if m.connection != nil && !m.connection.IsClosed() {
		m.mutex.RUnlock()
		return m.connection, nil
	}
	m.mutex.RUnlock()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Повторная проверка: другая горутина могла успеть переподключиться
	if m.connection != nil && !m.connection.IsClosed() {
		return m.connection, nil
	}

	m.Logger.Debug("ConnectionManager: Connecting...")
	conn, err := amqp.DialConfig(m.url, amqp.Config{
		Dial: amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("ConnectionManager: failed to dial RabbitMQ: %w", err)
	}
	m.connection = conn
	m.Logger.Debug("ConnectionManager: Connected successfully!")
	return m.connection, nil
}

// GetChannel - основной метод для получения нового канала из общего соединения
func (m *ConnectionManager) GetChannel() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := m.getConnection()
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return conn, nil, fmt.Errorf("ConnectionManager: failed to open a channel: %w", err)
	}
	return conn, ch, nil
}

func (m *ConnectionManager) watchConnection() {
	ticker := time.NewTicker(reconnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
		}

		m.mutex.RLock()
		alive := m.connection != nil && !m.connection.IsClosed()
		m.mutex.RUnlock()
		if alive {
			continue
		}

		m.Logger.Debug("ConnectionManager: Detected closed connection. Attempting to reconnect...")
		if _, err := m.getConnection(); err != nil {
			m.Logger.Error(err, "ConnectionManager: Reconnect failed")
		}
	}
}

// Close останавливает мониторинг и закрывает общее соединение
func (m *ConnectionManager) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	select {
	case <-m.done:
	default:
		close(m.done)
	}

	if m.connection != nil && !m.connection.IsClosed() {
		m.Logger.Debug("ConnectionManager: Closing the connection...")
		if err := m.connection.Close(); err != nil {
			m.Logger.Error(err, "ConnectionManager: Failed to close connection properly")
			return err
		}
		m.Logger.Debug("ConnectionManager: Connection closed successfully.")
		return nil
	}

	m.Logger.Debug("ConnectionManager: Connection was already closed or not established.")
	return nil
}
