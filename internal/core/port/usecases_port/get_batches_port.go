package usecases_port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

type GetBatchesUseCase interface {
	List(ctx context.Context) ([]domain.Batch, error)
	GetByID(ctx context.Context, batchID int64) (*domain.Batch, error)
}
