package usecase

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

type GetRecordsUseCase struct {
	batches port.BatchRepositoryPort
	records port.RecordRepositoryPort
}

func NewGetRecordsUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort) *GetRecordsUseCase {
	return &GetRecordsUseCase{batches: batches, records: records}
}

func (uc *GetRecordsUseCase) FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetRecordsByBatch",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	result, err := uc.records.FindByBatch(ctx, batchID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(result)})
	return result, nil
}

func (uc *GetRecordsUseCase) FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetRecordsByStatus",
		"batch_id": batchID,
		"status":   status,
	})

	ucLogger.Info("Use case started", nil)

	if _, err := uc.batches.GetByID(ctx, batchID); err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	result, err := uc.records.FindByBatchAndStatus(ctx, batchID, status)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(result)})
	return result, nil
}
