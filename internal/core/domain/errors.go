package domain

import "errors"

// Определяем переменные-ошибки, которые могут быть возвращены из Use Cases.
var (
	ErrBatchNotFound       = errors.New("batch not found")
	ErrBatchNameTaken      = errors.New("batch name already exists")
	ErrInvalidRecordStatus = errors.New("invalid record status")
	ErrInvalidRecordType   = errors.New("invalid record type")
)
