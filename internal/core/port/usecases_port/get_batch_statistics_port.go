package usecases_port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

type GetBatchStatisticsUseCase interface {
	Execute(ctx context.Context, batchID int64) (*domain.BatchStatisticsResult, error)
}
