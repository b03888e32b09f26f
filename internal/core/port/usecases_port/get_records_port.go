package usecases_port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

type GetRecordsUseCase interface {
	FindByBatch(ctx context.Context, batchID int64) ([]domain.Record, error)
	FindByBatchAndStatus(ctx context.Context, batchID int64, status domain.RecordStatus) ([]domain.Record, error)
}
