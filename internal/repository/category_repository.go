package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

// カテゴリ名の重複
var ErrDuplicateName = errors.New("duplicate name")

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	//同名があればErrDuplicateName
	Create(ctx context.Context, c model.Category) (model.Category, error)
}
