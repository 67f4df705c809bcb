package ports

import (
	"context"

	"fixer-service/internal/domain/model"
)

type RateService interface {
	Supports(request model.Request) bool
	Dispatch(ctx context.Context, request model.Request) (model.Outcome, error)
}
