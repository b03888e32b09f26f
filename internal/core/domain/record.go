package domain

import "time"

// RecordStatus - статус записи в конвейере.
type RecordStatus string

const (
	StatusExpected  RecordStatus = "expected"
	StatusProcessed RecordStatus = "processed"
)

// ParseRecordStatus проверяет строку из запроса и возвращает доменный статус.
func ParseRecordStatus(raw string) (RecordStatus, error) {
	switch RecordStatus(raw) {
	case StatusExpected, StatusProcessed:
		return RecordStatus(raw), nil
	}
	return "", ErrInvalidRecordStatus
}

// Record - одна отслеживаемая запись. RecordID - это доменный ключ
// (номер заказа, id транзакции и т.д.), он уникален только внутри
// пары батч+статус с точки зрения движка сверки.
type Record struct {
	ID        int64
	BatchID   int64
	RecordID  int64
	Status    RecordStatus
	Metadata  *string
	CreatedAt time.Time
}

// BatchSaveStats - статистика пакетного сохранения записей.
type BatchSaveStats struct {
	Saved   int
	Skipped int
}

// RecordCounts - "сырые" количества строк по батчу (без дедупликации).
type RecordCounts struct {
	Total     int64
	Expected  int64
	Processed int64
}
