package domain

import "time"

// RecordType - тип записей, которые отслеживаются в рамках батча.
type RecordType string

const (
	RecordTypeOrder       RecordType = "order"
	RecordTypeTransaction RecordType = "transaction"
	RecordTypeFile        RecordType = "file"
	RecordTypeShipment    RecordType = "shipment"
	RecordTypePayment     RecordType = "payment"
)

// ParseRecordType проверяет строку из запроса и возвращает доменный тип.
func ParseRecordType(raw string) (RecordType, error) {
	switch RecordType(raw) {
	case RecordTypeOrder, RecordTypeTransaction, RecordTypeFile, RecordTypeShipment, RecordTypePayment:
		return RecordType(raw), nil
	}
	return "", ErrInvalidRecordType
}

// Batch - группа записей, проходящих через один прогон конвейера.
// После создания батч неизменяем, удаление каскадно удаляет его записи.
type Batch struct {
	ID          int64
	Name        string
	RecordType  RecordType
	Description *string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
