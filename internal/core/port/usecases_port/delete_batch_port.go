package usecases_port

import "context"

type DeleteBatchUseCase interface {
	Execute(ctx context.Context, batchID int64) error
}
