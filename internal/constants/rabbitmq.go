package constants

// Имена очередей
const (
	QueueProcessedRecords = "processed_records"
)

// Ключи маршрутизации
const (
	RoutingKeyProcessedRecords = "records.batch.save"

	RoutingKeyIngestResults = "notify.ingest.result"
)

const (
	FinalDLXExchange   = "processed_records_final_dlx"
	FinalDLQ           = "processed_records_final_dlq"
	FinalDLQRoutingKey = "records.dlq.key"
)
