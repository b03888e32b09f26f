package usecase

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// GetBatchStatisticsUseCase отдает только агрегаты: строгое подмножество
// результата сверки без литеральных списков идентификаторов, плюс "сырые"
// количества строк в хранилище.
type GetBatchStatisticsUseCase struct {
	batches port.BatchRepositoryPort
	records port.RecordRepositoryPort
}

func NewGetBatchStatisticsUseCase(batches port.BatchRepositoryPort, records port.RecordRepositoryPort) *GetBatchStatisticsUseCase {
	return &GetBatchStatisticsUseCase{batches: batches, records: records}
}

func (uc *GetBatchStatisticsUseCase) Execute(ctx context.Context, batchID int64) (*domain.BatchStatisticsResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetBatchStatistics",
		"batch_id": batchID,
	})

	ucLogger.Info("Use case started", nil)

	batch, err := uc.batches.GetByID(ctx, batchID)
	if err != nil {
		ucLogger.Warn("Batch lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}

	counts, err := uc.records.CountByBatch(ctx, batchID)
	if err != nil {
		ucLogger.Error("Repository returned an error for record counts", err, nil)
		return nil, fmt.Errorf("failed to count records for batch %d: %w", batchID, err)
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
		"total_records":   counts.Total,
		"missing_count":   summary.MissingCount,
		"processing_rate": summary.ProcessingRate,
	})

	return &domain.BatchStatisticsResult{
		BatchID:        batch.ID,
		BatchName:      batch.Name,
		TotalRecords:   counts.Total,
		ExpectedRows:   counts.Expected,
		ProcessedRows:  counts.Processed,
		MissingCount:   summary.MissingCount,
		ProcessingRate: summary.ProcessingRate,
	}, nil
}
