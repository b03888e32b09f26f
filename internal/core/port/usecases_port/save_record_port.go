package usecases_port

import (
	"context"

	"github.com/google/uuid"
	"github.com/konomissira/missing-records-api/internal/core/domain"
)

type SaveRecordUseCase interface {
	Save(ctx context.Context, batchID int64, record domain.Record) (*domain.Record, error)
	BatchSave(ctx context.Context, batchID int64, records []domain.Record, taskID uuid.UUID) (*domain.BatchSaveStats, error)
}
