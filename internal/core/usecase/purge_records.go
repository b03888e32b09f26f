package usecase

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// PurgeRecordsUseCase удаляет все записи батча, не трогая сам батч.
// Полезно для сброса и повторной загрузки данных.
type PurgeRecordsUseCase struct {
	batches port.BatchRepositoryPort
	records port.RecordRepositoryPort
}

func NewPurgeRecordsUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort) *PurgeRecordsUseCase {
	return &PurgeRecordsUseCase{batches: batches, records: records}
}

func (uc *PurgeRecordsUseCase) Execute(ctx context.Context, batchID int64) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "PurgeBatchRecords",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return 0, err
	}

	count, err := uc.records.PurgeByBatch(ctx, batchID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return 0, fmt.Errorf("failed to purge records for batch %d: %w", batchID, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"deleted_count": count})
	return count, nil
}
