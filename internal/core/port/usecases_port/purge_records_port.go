package usecases_port

import "context"

type PurgeRecordsUseCase interface {
	Execute(ctx context.Context, batchID int64) (int64, error)
}
