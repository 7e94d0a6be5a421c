package assetclass

import "context"

type Repository interface {
	Save(ctx context.Context, class *AssetClass) error
	List(ctx context.Context) ([]*AssetClass, error)
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}
