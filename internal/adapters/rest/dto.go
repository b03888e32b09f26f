package rest

import (
	"time"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

// --- запросы ---

type CreateBatchRequestDTO struct {
	BatchName   string  `json:"batch_name"`
	RecordType  string  `json:"record_type"`
	Description *string `json:"description,omitempty"`
}

type CreateRecordRequestDTO struct {
	BatchID  int64   `json:"batch_id"`
	RecordID int64   `json:"record_id"`
	Status   string  `json:"status"`
	Metadata *string `json:"record_metadata,omitempty"`
}

type BulkRecordItemDTO struct {
	RecordID int64   `json:"record_id"`
	Status   string  `json:"status"`
	Metadata *string `json:"record_metadata,omitempty"`
}

type BulkCreateRecordsRequestDTO struct {
	BatchID int64               `json:"batch_id"`
	Records []BulkRecordItemDTO `json:"records"`
}

// --- ответы ---

type BatchResponseDTO struct {
	ID          int64      `json:"id"`
	BatchName   string     `json:"batch_name"`
	RecordType  string     `json:"record_type"`
	Description *string    `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type RecordResponseDTO struct {
	ID        int64     `json:"id"`
	BatchID   int64     `json:"batch_id"`
	RecordID  int64     `json:"record_id"`
	Status    string    `json:"status"`
	Metadata  *string   `json:"record_metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BulkCreateResponseDTO struct {
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

type PurgeResponseDTO struct {
	BatchID int64 `json:"batch_id"`
	Deleted int64 `json:"deleted"`
}

type MissingRecordsResponseDTO struct {
	BatchID           int64   `json:"batch_id"`
	BatchName         string  `json:"batch_name"`
	TotalExpected     int     `json:"total_expected"`
	TotalProcessed    int     `json:"total_processed"`
	MissingCount      int     `json:"missing_count"`
	MissingRecords    []int64 `json:"missing_records"`
	UnexpectedCount   int     `json:"unexpected_count"`
	UnexpectedRecords []int64 `json:"unexpected_records"`
	ProcessingRate    float64 `json:"processing_rate"`
}

type ProcessingStatusResponseDTO struct {
	BatchID          int64   `json:"batch_id"`
	BatchName        string  `json:"batch_name"`
	RecordType       string  `json:"record_type"`
	ExpectedRecords  []int64 `json:"expected_records"`
	ProcessedRecords []int64 `json:"processed_records"`
	ExpectedCount    int     `json:"expected_count"`
	ProcessedCount   int     `json:"processed_count"`
}

type BatchStatisticsResponseDTO struct {
	BatchID        int64   `json:"batch_id"`
	BatchName      string  `json:"batch_name"`
	TotalRecords   int64   `json:"total_records"`
	ExpectedRows   int64   `json:"expected_rows"`
	ProcessedRows  int64   `json:"processed_rows"`
	MissingCount   int     `json:"missing_count"`
	ProcessingRate float64 `json:"processing_rate"`
}

// --- мапперы domain -> DTO ---

func toBatchResponseDTO(b *domain.Batch) BatchResponseDTO {
	return BatchResponseDTO{
		ID:          b.ID,
		BatchName:   b.Name,
		RecordType:  string(b.RecordType),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toBatchResponseDTOs(batches []domain.Batch) []BatchResponseDTO {
	dtos := make([]BatchResponseDTO, 0, len(batches))
	for i := range batches {
		dtos = append(dtos, toBatchResponseDTO(&batches[i]))
	}
	return dtos
}

func toRecordResponseDTO(rec *domain.Record) RecordResponseDTO {
	return RecordResponseDTO{
		ID:        rec.ID,
		BatchID:   rec.BatchID,
		RecordID:  rec.RecordID,
		Status:    string(rec.Status),
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
	}
}

func toRecordResponseDTOs(records []domain.Record) []RecordResponseDTO {
	dtos := make([]RecordResponseDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, toRecordResponseDTO(&records[i]))
	}
	return dtos
}

func toMissingRecordsResponseDTO(res *domain.MissingRecordsResult) MissingRecordsResponseDTO {
	return MissingRecordsResponseDTO{
		BatchID:           res.BatchID,
		BatchName:         res.BatchName,
		TotalExpected:     res.TotalExpected,
		TotalProcessed:    res.TotalProcessed,
		MissingCount:      res.MissingCount,
		MissingRecords:    res.Missing,
		UnexpectedCount:   res.UnexpectedCount,
		UnexpectedRecords: res.Unexpected,
		ProcessingRate:    res.ProcessingRate,
	}
}

func toProcessingStatusResponseDTO(res *domain.ProcessingStatusResult) ProcessingStatusResponseDTO {
	return ProcessingStatusResponseDTO{
		BatchID:          res.BatchID,
		BatchName:        res.BatchName,
		RecordType:       string(res.RecordType),
		ExpectedRecords:  res.ExpectedIDs,
		ProcessedRecords: res.ProcessedIDs,
		ExpectedCount:    res.ExpectedCount,
		ProcessedCount:   res.ProcessedCount,
	}
}

func toBatchStatisticsResponseDTO(res *domain.BatchStatisticsResult) BatchStatisticsResponseDTO {
	return BatchStatisticsResponseDTO{
		BatchID:        res.BatchID,
		BatchName:      res.BatchName,
		TotalRecords:   res.TotalRecords,
		ExpectedRows:   res.ExpectedRows,
		ProcessedRows:  res.ProcessedRows,
		MissingCount:   res.MissingCount,
		ProcessingRate: res.ProcessingRate,
	}
}
