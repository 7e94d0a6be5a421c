package rawdata

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/bni27/ogp-db-api/internal/core"
	"github.com/bni27/ogp-db-api/internal/db"
)

type Service struct {
	repo  Repository
	store core.FileStore
}

func NewService(repo Repository, store core.FileStore) *Service {
	return &Service{
		repo:  repo,
		store: store,
	}
}

// TableName maps a dataset file name to its raw table name.
func TableName(fileName string) string {
	stem := strings.TrimSuffix(fileName, path.Ext(fileName))
	return strings.ToLower(strings.ReplaceAll(stem, " ", "_"))
}

// --------------------------------------------------
// Load dataset files into raw tables
// --------------------------------------------------

// LoadFile loads one stored CSV into its raw table, replacing any
// previous contents of that table.
func (s *Service) LoadFile(
	ctx context.Context,
	assetClass string,
	fileName string,
	verified bool,
) (string, error) {

	key := core.DataKey(verified, assetClass, fileName)

	body, err := s.store.Download(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, key)
	}
	defer body.Close()

	table, err := ParseCSV(body)
	if err != nil {
		return "", err
	}

	schema := db.RawSchema(verified)
	tableName := TableName(fileName)

	log.Printf("[RAW] loading file=%s into table=%s.%s rows=%d", key, schema, tableName, len(table.Rows))

	if err := s.repo.Rebuild(ctx, schema, tableName, table.Columns, table.Rows); err != nil {
		return "", err
	}

	return schema + "." + tableName, nil
}

// LoadAssetClass loads every CSV of an asset class. One bad file does not
// stop the remaining files; failures are reported per file.
func (s *Service) LoadAssetClass(
	ctx context.Context,
	assetClass string,
	verified bool,
) ([]string, map[string]string, error) {

	files, err := s.ListFiles(ctx, assetClass, verified)
	if err != nil {
		return nil, nil, err
	}

	var loaded []string
	failed := make(map[string]string)

	for _, file := range files {
		name, err := s.LoadFile(ctx, assetClass, file, verified)
		if err != nil {
			log.Printf("[RAW] ⚠️ failed to load file=%s err=%v", file, err)
			failed[file] = err.Error()
			continue
		}
		loaded = append(loaded, name)
	}

	return loaded, failed, nil
}

// ListFiles returns the asset class's dataset files in lexical order.
func (s *Service) ListFiles(ctx context.Context, assetClass string, verified bool) ([]string, error) {
	names, err := s.store.List(ctx, core.DataPrefix(verified, assetClass))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, name := range names {
		if strings.HasSuffix(strings.ToLower(name), ".csv") {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// --------------------------------------------------
// Raw table reads
// --------------------------------------------------
func (s *Service) ListTables(ctx context.Context, verified bool) ([]string, error) {
	return s.repo.ListTables(ctx, db.RawSchema(verified))
}

func (s *Service) GetTable(ctx context.Context, table string, verified bool) (*Table, error) {
	exists, err := s.repo.TableExists(ctx, db.RawSchema(verified), table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTableNotFound
	}
	return s.repo.SelectAll(ctx, db.RawSchema(verified), table)
}

func (s *Service) DeleteTable(ctx context.Context, table string, verified bool) error {
	return s.repo.Drop(ctx, db.RawSchema(verified), table)
}

// --------------------------------------------------
// Record CRUD, mirrored to the backing file
// --------------------------------------------------
func (s *Service) GetRecord(
	ctx context.Context,
	table string,
	verified bool,
	projectID string,
	sample string,
) (map[string]any, error) {
	return s.repo.GetRecord(ctx, db.RawSchema(verified), table, projectID, sample)
}

func (s *Service) AddRecord(
	ctx context.Context,
	table string,
	verified bool,
	rec *Record,
) error {

	if err := s.repo.InsertRecord(ctx, db.RawSchema(verified), table, rec); err != nil {
		return err
	}

	return s.mirrorRecords(ctx, table, verified, func(headers []string, rows []map[string]string) ([]map[string]string, error) {
		for _, row := range rows {
			if row["project_id"] == rec.ProjectID && row["sample"] == rec.Sample {
				return nil, ErrRecordExists
			}
		}

		row := make(map[string]string, len(headers))
		row["project_id"] = rec.ProjectID
		row["sample"] = rec.Sample
		for key, value := range rec.Data {
			row[NormalizeHeader(key)] = FormatValue(value)
		}
		return append(rows, row), nil
	})
}

func (s *Service) UpdateRecord(
	ctx context.Context,
	table string,
	verified bool,
	rec *Record,
) error {

	if err := s.repo.UpdateRecord(ctx, db.RawSchema(verified), table, rec); err != nil {
		return err
	}

	return s.mirrorRecords(ctx, table, verified, func(headers []string, rows []map[string]string) ([]map[string]string, error) {
		found := false
		for _, row := range rows {
			if row["project_id"] == rec.ProjectID && row["sample"] == rec.Sample {
				for key, value := range rec.Data {
					row[NormalizeHeader(key)] = FormatValue(value)
				}
				found = true
			}
		}
		if !found {
			return nil, ErrRecordNotFound
		}
		return rows, nil
	})
}

func (s *Service) DeleteRecord(
	ctx context.Context,
	table string,
	verified bool,
	projectID string,
	sample string,
) error {

	if err := s.repo.DeleteRecord(ctx, db.RawSchema(verified), table, projectID, sample); err != nil {
		return err
	}

	return s.mirrorRecords(ctx, table, verified, func(headers []string, rows []map[string]string) ([]map[string]string, error) {
		kept := rows[:0]
		found := false
		for _, row := range rows {
			if row["project_id"] == projectID && row["sample"] == sample {
				found = true
				continue
			}
			kept = append(kept, row)
		}
		if !found {
			return nil, ErrRecordNotFound
		}
		return kept, nil
	})
}

// mirrorRecords applies an edit to the CSV behind a raw table so files and
// tables stay in sync.
func (s *Service) mirrorRecords(
	ctx context.Context,
	table string,
	verified bool,
	edit func(headers []string, rows []map[string]string) ([]map[string]string, error),
) error {

	key, err := s.findFile(ctx, table, verified)
	if err != nil {
		return err
	}

	body, err := s.store.Download(ctx, key)
	if err != nil {
		return err
	}
	headers, rows, err := ReadRecords(body)
	body.Close()
	if err != nil {
		return err
	}

	rows, err = edit(headers, rows)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := WriteRecords(&buf, headers, rows); err != nil {
		return err
	}

	if _, err := s.store.Upload(ctx, key, &buf); err != nil {
		return err
	}

	log.Printf("[RAW] mirrored record change to file=%s", key)
	return nil
}

// findFile locates the stored CSV a raw table was loaded from by matching
// the table name against file stems across every asset class folder.
func (s *Service) findFile(ctx context.Context, table string, verified bool) (string, error) {
	area := "unverified/"
	if verified {
		area = "verified/"
	}

	keys, err := s.store.List(ctx, area)
	if err != nil {
		return "", err
	}

	for _, key := range keys {
		if TableName(path.Base(key)) == table && strings.HasSuffix(strings.ToLower(key), ".csv") {
			return area + key, nil
		}
	}

	return "", fmt.Errorf("%w: no file backs table %s", ErrFileNotFound, table)
}
