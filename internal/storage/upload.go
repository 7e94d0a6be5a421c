package storage

import (
	"context"
	"errors"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/bni27/ogp-db-api/internal/core"
)

var ErrNotCSV = errors.New("only .csv files are accepted")

// ValidateCSVFilename rejects anything that is not a plain .csv file name.
func ValidateCSVFilename(name string) error {
	if filepath.Ext(strings.ToLower(name)) != ".csv" {
		return ErrNotCSV
	}
	if name != filepath.Base(name) {
		return ErrNotCSV
	}
	return nil
}

// UploadMultipartFile uploads a multipart dataset file and returns its public URL
func UploadMultipartFile(
	ctx context.Context,
	store core.FileStore,
	key string,
	file *multipart.FileHeader,
) (string, error) {

	if err := ValidateCSVFilename(file.Filename); err != nil {
		return "", err
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return store.Upload(ctx, key, f)
}
