package assetclass

import (
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/bni27/ogp-db-api/internal/core"
	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/storage"
)

var ErrFileExists = errors.New("file already exists")

type Service struct {
	repo   Repository
	tables rawdata.Repository
	store  core.FileStore
}

func NewService(
	repo Repository,
	tables rawdata.Repository,
	store core.FileStore,
) *Service {
	return &Service{
		repo:   repo,
		tables: tables,
		store:  store,
	}
}

// --------------------------------------------------
// Register asset class
// --------------------------------------------------
func (s *Service) Create(ctx context.Context, name string) (*AssetClass, error) {
	if !ValidName(name) {
		return nil, ErrBadClassName
	}

	class := &AssetClass{Name: name}
	if err := s.repo.Save(ctx, class); err != nil {
		return nil, err
	}

	log.Printf("[ASSET] registered asset class=%s", name)
	return class, nil
}

// --------------------------------------------------
// List asset classes with staging status
// --------------------------------------------------
func (s *Service) List(ctx context.Context, verified bool) ([]*ClassInfo, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*ClassInfo, 0, len(classes))
	for _, class := range classes {
		staged, err := s.tables.TableExists(ctx, db.StageSchema(verified), class.Name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &ClassInfo{
			Name:      class.Name,
			CreatedAt: class.CreatedAt,
			Staged:    staged,
		})
	}

	return infos, nil
}

// --------------------------------------------------
// Delete asset class and everything it owns
// --------------------------------------------------

// Delete removes the class's stored files, raw tables, and stage tables in
// both areas before deregistering it.
func (s *Service) Delete(ctx context.Context, name string) error {
	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrClassNotFound
	}

	for _, verified := range []bool{true, false} {
		files, err := s.ListFiles(ctx, name, verified)
		if err != nil {
			return err
		}

		for _, file := range files {
			if err := s.tables.Drop(ctx, db.RawSchema(verified), rawdata.TableName(file)); err != nil {
				return err
			}
			if err := s.store.Delete(ctx, core.DataKey(verified, name, file)); err != nil {
				return err
			}
		}

		if err := s.tables.Drop(ctx, db.StageSchema(verified), name); err != nil {
			return err
		}
	}

	log.Printf("[ASSET] deleted asset class=%s", name)
	return s.repo.Delete(ctx, name)
}

// --------------------------------------------------
// Dataset files
// --------------------------------------------------
func (s *Service) ListFiles(ctx context.Context, name string, verified bool) ([]string, error) {
	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrClassNotFound
	}

	names, err := s.store.List(ctx, core.DataPrefix(verified, name))
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(names))
	for _, file := range names {
		if strings.HasSuffix(strings.ToLower(file), ".csv") {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Service) UploadFile(
	ctx context.Context,
	name string,
	verified bool,
	overwrite bool,
	file *multipart.FileHeader,
) (string, error) {

	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", ErrClassNotFound
	}

	key := core.DataKey(verified, name, file.Filename)

	present, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if present && !overwrite {
		return "", ErrFileExists
	}

	url, err := storage.UploadMultipartFile(ctx, s.store, key, file)
	if err != nil {
		return "", err
	}

	log.Printf("[ASSET] uploaded file=%s overwrite=%t", key, overwrite)
	return url, nil
}

func (s *Service) DownloadFile(
	ctx context.Context,
	name string,
	fileName string,
	verified bool,
) (io.ReadCloser, error) {

	key := core.DataKey(verified, name, fileName)

	present, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, rawdata.ErrFileNotFound
	}

	return s.store.Download(ctx, key)
}

func (s *Service) DeleteFile(
	ctx context.Context,
	name string,
	fileName string,
	verified bool,
) error {

	key := core.DataKey(verified, name, fileName)

	present, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !present {
		return rawdata.ErrFileNotFound
	}

	log.Printf("[ASSET] deleting file=%s", key)
	return s.store.Delete(ctx, key)
}
