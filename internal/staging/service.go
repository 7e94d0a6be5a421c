package staging

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/bni27/ogp-db-api/internal/core"
	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/reference"
)

var ErrNoRawTables = errors.New("no raw tables exist for this asset class")

// Result summarizes one stage rebuild.
type Result struct {
	AssetClass   string   `json:"asset_class"`
	RowsStaged   int      `json:"rows_staged"`
	TargetYear   int      `json:"target_year"`
	SourceTables []string `json:"source_tables"`
}

// --------------------------------------------------
// STAGE SERVICE
// --------------------------------------------------

// Service rebuilds and serves stage tables. A stage table is the union of
// an asset class's raw tables with imputed schedule columns, normalized
// cost columns and reference enrichment applied to every row.
type Service struct {
	tables rawdata.Repository
	stage  Repository
	refs   *reference.Service
	store  core.FileStore
}

func NewService(
	tables rawdata.Repository,
	stage Repository,
	refs *reference.Service,
	store core.FileStore,
) *Service {
	return &Service{
		tables: tables,
		stage:  stage,
		refs:   refs,
		store:  store,
	}
}

// Stage rebuilds the stage table for one asset class from its raw tables.
// Files that have not been loaded into a raw table yet are skipped, so a
// half-loaded class can still be staged from what is there.
func (s *Service) Stage(ctx context.Context, assetClass string, verified bool) (*Result, error) {
	files, err := s.store.List(ctx, core.DataPrefix(verified, assetClass))
	if err != nil {
		return nil, fmt.Errorf("listing files for %s: %w", assetClass, err)
	}

	rawSchema := db.RawSchema(verified)

	var (
		loaded []*rawdata.Table
		names  []string
	)
	for _, file := range files {
		if strings.ToLower(path.Ext(file)) != ".csv" {
			continue
		}
		table := rawdata.TableName(file)

		exists, err := s.tables.TableExists(ctx, rawSchema, table)
		if err != nil {
			return nil, err
		}
		if !exists {
			log.Printf("[STAGE] ⚠️ skipping file=%s, no raw table %s.%s", file, rawSchema, table)
			continue
		}

		t, err := s.tables.SelectAll(ctx, rawSchema, table)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, t)
		names = append(names, table)
	}
	if len(loaded) == 0 {
		return nil, ErrNoRawTables
	}

	targetYear, err := s.refs.TargetYear(ctx)
	if err != nil {
		return nil, err
	}
	refs, err := s.refs.RefSet(ctx)
	if err != nil {
		return nil, err
	}

	columns, rows := unionTables(loaded)
	transform := NewTransform(columns, refs, targetYear)
	staged := transform.ApplyAll(rows)

	stageSchema := db.StageSchema(verified)
	if err := s.stage.RebuildSwap(ctx, stageSchema, assetClass, transform.OutputColumns(), staged); err != nil {
		return nil, fmt.Errorf("rebuilding %s.%s: %w", stageSchema, assetClass, err)
	}

	sort.Strings(names)
	log.Printf("[STAGE] ✅ staged asset_class=%s schema=%s rows=%d target_year=%d tables=%d",
		assetClass, stageSchema, len(staged), targetYear, len(names))

	return &Result{
		AssetClass:   assetClass,
		RowsStaged:   len(staged),
		TargetYear:   targetYear,
		SourceTables: names,
	}, nil
}

// GetData returns every row of an asset class's stage table.
func (s *Service) GetData(ctx context.Context, assetClass string, verified bool) ([]map[string]any, error) {
	table, err := s.tables.SelectAll(ctx, db.StageSchema(verified), assetClass)
	if err != nil {
		return nil, err
	}
	return table.RowMaps(), nil
}

// GetRecord returns one staged row by its primary key pair.
func (s *Service) GetRecord(
	ctx context.Context,
	assetClass string,
	verified bool,
	projectID string,
	sample string,
) (map[string]any, error) {
	return s.tables.GetRecord(ctx, db.StageSchema(verified), assetClass, projectID, sample)
}

// Delete drops an asset class's stage table.
func (s *Service) Delete(ctx context.Context, assetClass string, verified bool) error {
	if err := s.tables.Drop(ctx, db.StageSchema(verified), assetClass); err != nil {
		return err
	}
	log.Printf("[STAGE] dropped stage table asset_class=%s verified=%t", assetClass, verified)
	return nil
}
