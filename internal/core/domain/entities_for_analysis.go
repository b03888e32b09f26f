package domain

// MissingRecordsResult - полный результат сверки по батчу.
type MissingRecordsResult struct {
	BatchID   int64
	BatchName string
	ReconciliationSummary
}

// ProcessingStatusResult - обе коллекции идентификаторов бок о бок,
// без алгебры множеств. Чистая проекция для визуального сравнения.
type ProcessingStatusResult struct {
	BatchID        int64
	BatchName      string
	RecordType     RecordType
	ExpectedIDs    []int64
	ProcessedIDs   []int64
	ExpectedCount  int
	ProcessedCount int
}

// BatchStatisticsResult - агрегаты без литеральных списков идентификаторов.
// Полезно, когда важен размер ответа. TotalRecords/ExpectedRows/ProcessedRows -
// это количество строк в хранилище, остальное считается по дедуплицированным
// множествам.
type BatchStatisticsResult struct {
	BatchID        int64
	BatchName      string
	TotalRecords   int64
	ExpectedRows   int64
	ProcessedRows  int64
	MissingCount   int
	ProcessingRate float64
}
