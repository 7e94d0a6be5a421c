package prod

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/bni27/ogp-db-api/internal/db"
	"github.com/bni27/ogp-db-api/internal/rawdata"
)

// TableBuilder rebuilds one table atomically from a full set of rows.
type TableBuilder interface {
	RebuildSwap(ctx context.Context, schema, table string, columns []rawdata.Column, rows [][]any) error
}

// --------------------------------------------------
// PRODUCTION TABLE SERVICE
// --------------------------------------------------

// Service publishes prod.projects, the union of every verified stage
// table with an asset_class column telling the rows apart.
type Service struct {
	tables rawdata.Repository
	build  TableBuilder
}

func NewService(tables rawdata.Repository, build TableBuilder) *Service {
	return &Service{
		tables: tables,
		build:  build,
	}
}

// Update rebuilds prod.projects from the verified stage tables.
func (s *Service) Update(ctx context.Context) (*Result, error) {
	stageSchema := db.StageSchema(true)

	names, err := s.tables.ListTables(ctx, stageSchema)
	if err != nil {
		return nil, fmt.Errorf("listing stage tables: %w", err)
	}

	var classes []string
	for _, name := range names {
		// ignore any leftover swap tables
		if strings.HasSuffix(name, "__staging") {
			continue
		}
		classes = append(classes, name)
	}
	if len(classes) == 0 {
		return nil, ErrNoStageTables
	}
	sort.Strings(classes)

	staged := make(map[string]*rawdata.Table, len(classes))
	var unionNames []string
	for _, class := range classes {
		table, err := s.tables.SelectAll(ctx, stageSchema, class)
		if err != nil {
			return nil, fmt.Errorf("reading %s.%s: %w", stageSchema, class, err)
		}
		staged[class] = table
		for _, col := range table.Columns {
			if !has(unionNames, col.Name) {
				unionNames = append(unionNames, col.Name)
			}
		}
	}
	if !has(unionNames, "asset_class") {
		unionNames = append(unionNames, "asset_class")
	}

	ordered := orderColumns(unionNames)

	var rows [][]any
	for _, class := range classes {
		for _, rowMap := range staged[class].RowMaps() {
			rowMap["asset_class"] = class

			row := make([]any, len(ordered))
			for i, col := range ordered {
				row[i] = rowMap[col]
			}
			rows = append(rows, row)
		}
	}

	if err := s.build.RebuildSwap(ctx, Schema, Table, buildColumns(ordered), rows); err != nil {
		return nil, fmt.Errorf("rebuilding %s.%s: %w", Schema, Table, err)
	}

	log.Printf("[PROD] ✅ published rows=%d asset_classes=%d", len(rows), len(classes))

	return &Result{
		RowsPublished: len(rows),
		AssetClasses:  classes,
	}, nil
}

// GetData returns the published rows, optionally for one asset class.
func (s *Service) GetData(ctx context.Context, assetClass string) ([]map[string]any, error) {
	table, err := s.tables.SelectAll(ctx, Schema, Table)
	if err != nil {
		return nil, err
	}

	rows := table.RowMaps()
	if assetClass == "" {
		return rows, nil
	}

	filtered := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		if row["asset_class"] == assetClass {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}
