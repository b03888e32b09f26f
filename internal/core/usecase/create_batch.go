package usecase

import (
	"context"
	"fmt"

	"github.com/konomissira/missing-records-api/internal/contextkeys"
	"github.com/konomissira/missing-records-api/internal/core/domain"
	"github.com/konomissira/missing-records-api/internal/core/port"
)

// CreateBatchUseCase инкапсулирует логику создания нового батча.
type CreateBatchUseCase struct {
	batches port.BatchRepositoryPort
}

// NewCreateBatchUseCase создает новый экземпляр use case.
func NewCreateBatchUseCase(batches port.BatchRepositoryPort) *CreateBatchUseCase {
	return &CreateBatchUseCase{batches: batches}
}

func (uc *CreateBatchUseCase) Execute(ctx context.Context, name string, recordType domain.RecordType, description *string) (*domain.Batch, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":    "CreateBatch",
		"batch_name":  name,
		"record_type": recordType,
	})

	ucLogger.Info("Use case started", nil)

	// Имя батча уникально, проверяем до вставки, чтобы вернуть
	// осмысленную ошибку вместо нарушения constraint.
	existing, err := uc.batches.GetByName(ctx, name)
	if err != nil {
		ucLogger.Error("Repository returned an error during name check", err, nil)
		return nil, fmt.Errorf("failed to check batch name '%s': %w", name, err)
	}
	if existing != nil {
		ucLogger.Warn("Batch name already taken", nil)
		return nil, domain.ErrBatchNameTaken
	}

	batch, err := uc.batches.Create(ctx, domain.Batch{
		Name:        name,
		RecordType:  recordType,
		Description: description,
	})
	if err != nil {
		ucLogger.Error("Repository returned an error during create", err, nil)
		return nil, fmt.Errorf("failed to create batch '%s': %w", name, err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"batch_id": batch.ID})
	return batch, nil
}
