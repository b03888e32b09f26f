package usecase

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// ReconcileBatchUseCase выполняет сверку батча: достает из хранилища
// ожидаемые и обработанные идентификаторы и отдает их чистому движку
// domain.Reconcile. Сам use case состояния не имеет, результат -
// функция от содержимого батча на момент чтения.
type ReconcileBatchUseCase struct {
	batches port.BatchRepositoryPort
	records port.RecordRepositoryPort
}

func NewReconcileBatchUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort) *ReconcileBatchUseCase {
	return &ReconcileBatchUseCase{batches: batches, records: records}
}

func (uc *ReconcileBatchUseCase) Execute(ctx context.Context, batchID int64) (*domain.MissingRecordsResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ReconcileBatch",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	expected, err := uc.records.FetchIDs(ctx, batchID, domain.StatusExpected)
	if err != nil {
		ucLogger.Error("Repository returned an error for expected IDs", err, nil)
		return nil, fmt.Errorf("failed to fetch expected IDs for batch %d: %w", batchID, err)
	}

	processed, err := uc.records.FetchIDs(ctx, batchID, domain.StatusProcessed)
	if err != nil {
		ucLogger.Error("Repository returned an error for processed IDs", err, nil)
		return nil, fmt.Errorf("failed to fetch processed IDs for batch %d: %w", batchID, err)
	}

	summary := domain.Reconcile(expected, processed)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_expected":  summary.TotalExpected,
		"missing_count":   summary.MissingCount,
		"processing_rate": summary.ProcessingRate,
	})

	return &domain.MissingRecordsResult{
		BatchID:               batch.ID,
		BatchName:             batch.Name,
		ReconciliationSummary: summary,
	}, nil
}
