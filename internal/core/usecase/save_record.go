package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// SaveRecordUseCase инкапсулирует логику сохранения записей в батч.
type SaveRecordUseCase struct {
	batches  port.BatchRepositoryPort
	records  port.RecordRepositoryPort
	reporter port.IngestReporterPort
}

// NewSaveRecordUseCase создает новый экземпляр use case.
func NewSaveRecordUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort, reporter port.IngestReporterPort) *SaveRecordUseCase {
	return &SaveRecordUseCase{
		batches:  batches,
		records:  records,
		reporter: reporter,
	}
}

// Save сохраняет одну запись, предварительно проверив существование батча.
func (uc *SaveRecordUseCase) Save(ctx context.Context, batchID int64, record domain.Record) (*domain.Record, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "SaveRecord",
		"batch_id":  batchID,
		"record_id": record.RecordID,
		"status":    record.Status,
	})

	ucLogger.Info("Use case started: attempting to save single record", nil)

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	record.BatchID = batchID
	saved, err := uc.records.Save(ctx, record)
	if err != nil {
		ucLogger.Error("Repository returned an error during save", err, nil)
		return nil, fmt.Errorf("failed to save record %d for batch %d: %w", record.RecordID, batchID, err)
	}

	ucLogger.Info("Use case finished: successfully saved single record", nil)
	return saved, nil
}

// BatchSave сохраняет пачку записей и публикует отчет о результатах.
// taskID приходит от источника событий (конвейера) и нужен только для отчета.
func (uc *SaveRecordUseCase) BatchSave(ctx context.Context, batchID int64, records []domain.Record, taskID uuid.UUID) (*domain.BatchSaveStats, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":     "BatchSaveRecords",
		"batch_id":     batchID,
		"record_count": len(records),
		"task_id":      taskID.String(),
	})

	ucLogger.Info("Use case started: attempting to batch save records", nil)

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	for i := range records {
		records[i].BatchID = batchID
	}

	stats, err := uc.records.BatchSave(ctx, records)
	if err != nil {
		ucLogger.Error("Repository returned an error during batch save", err, nil)
		return nil, fmt.Errorf("failed to save %d records for batch %d: %w", len(records), batchID, err)
	}

	ucLogger.Info("Repository batch save completed successfully", port.Fields{"stats": stats})

	// Отчет отправляем только когда есть кому отчитываться и есть результат.
	if uc.reporter != nil && stats != nil && stats.Saved > 0 && taskID != uuid.Nil {
		if err := uc.reporter.ReportResults(ctx, taskID, stats); err != nil {
			// Логируем ошибку, но не возвращаем ее, т.к. основная операция
			// (сохранение) прошла успешно. Это предотвратит повторную
			// обработку уже сохраненных данных.
			ucLogger.Error("Failed to report ingest results after successful save", err, nil)
		}
	}

	ucLogger.Info("Use case finished", nil)
	return stats, nil
}
