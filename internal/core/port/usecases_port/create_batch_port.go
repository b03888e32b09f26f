package usecases_port

import (
	"context"

	"github.com/konomissira/missing-records-api/internal/core/domain"
)

type CreateBatchUseCase interface {
	Execute(ctx context.Context, name string, recordType domain.RecordType, description *string) (*domain.Batch, error)
}
