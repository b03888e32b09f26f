package rabbitmq

import "github.com/google/uuid"

// IncomingRecordDTO - одна запись внутри события ProcessedRecordsEvent
type IncomingRecordDTO struct {
	RecordID int64   `json:"record_id"`
	Status   string  `json:"status"`
	Metadata *string `json:"record_metadata,omitempty"`
}

// IncomingEventDTO - тело события ProcessedRecordsEvent
type IncomingEventDTO struct {
	TaskID  uuid.UUID           `json:"task_id"`
	BatchID int64               `json:"batch_id"`
	Records []IncomingRecordDTO `json:"records"`
}
