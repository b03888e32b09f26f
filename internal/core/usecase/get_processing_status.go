package usecase

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// GetProcessingStatusUseCase отдает обе коллекции идентификаторов бок о бок.
// Это чистая проекция строк хранилища: без алгебры множеств и без
// дедупликации, повторные строки видны как есть.
type GetProcessingStatusUseCase struct {
	batches port.BatchRepositoryPort
	records port.RecordRepositoryPort
}

func NewGetProcessingStatusUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort) *GetProcessingStatusUseCase {
	return &GetProcessingStatusUseCase{batches: batches, records: records}
}

func (uc *GetProcessingStatusUseCase) Execute(ctx context.Context, batchID int64) (*domain.ProcessingStatusResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetProcessingStatus",
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

	// Репозиторий уже отдает идентификаторы отсортированными
	if expected == nil {
		expected = []int64{}
	}
	if processed == nil {
		processed = []int64{}
	}

	ucLogger.Info("Use case finished successfully", port.Fields{
		"expected_count":  len(expected),
		"processed_count": len(processed),
	})

	return &domain.ProcessingStatusResult{
		BatchID:        batch.ID,
		BatchName:      batch.Name,
		RecordType:     batch.RecordType,
		ExpectedIDs:    expected,
		ProcessedIDs:   processed,
		ExpectedCount:  len(expected),
		ProcessedCount: len(processed),
	}, nil
}
