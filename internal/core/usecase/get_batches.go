package usecase

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

type GetBatchesUseCase struct {
	batches port.BatchRepositoryPort
}

func NewGetBatchesUseCase(batches port.BatchRepositoryPort) *GetBatchesUseCase {
	return &GetBatchesUseCase{batches: batches}
}

func (uc *GetBatchesUseCase) List(ctx context.Context) ([]domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetBatchesList",
	})

	ucLogger.Info("Use case started", nil)

	result, err := uc.batches.List(ctx)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(result)})
	return result, nil
}

func (uc *GetBatchesUseCase) GetByID(ctx context.Context, batchID int64) (*domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetBatchByID",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	result, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return result, nil
}
