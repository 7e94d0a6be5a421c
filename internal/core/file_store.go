package core

import (
	"context"
	"io"
)

// FileStore is the object-storage contract shared by the ingestion and
// asset-class services. Keys follow {verified|unverified}/{asset_class}/{file}.
type FileStore interface {
	Upload(ctx context.Context, key string, body io.Reader) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// DataKey builds the object key for a dataset file.
func DataKey(verified bool, assetClass, fileName string) string {
	return DataPrefix(verified, assetClass) + fileName
}

// DataPrefix builds the folder prefix for an asset class.
func DataPrefix(verified bool, assetClass string) string {
	area := "unverified"
	if verified {
		area = "verified"
	}
	return area + "/" + assetClass + "/"
}
