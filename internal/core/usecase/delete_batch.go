package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

type DeleteBatchUseCase struct {
	batches port.BatchRepositoryPort
}

func NewDeleteBatchUseCase(batches port.BatchRepositoryPort) *DeleteBatchUseCase {
	return &DeleteBatchUseCase{batches: batches}
}

// Execute удаляет батч вместе со всеми его записями (каскадно на уровне БД).
func (uc *DeleteBatchUseCase) Execute(ctx context.Context, batchID int64) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "DeleteBatch",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	if err := uc.batches.Delete(ctx, batchID); err != nil {
		if errors.Is(err, domain.ErrBatchNotFound) {
			ucLogger.Warn("Batch not found", nil)
			return err
		}
		ucLogger.Error("Repository returned an error", err, nil)
		return fmt.Errorf("failed to delete batch %d: %w", batchID, err)
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
