package rcf

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/bni27/ogp-db-api/internal/db"
)

// --------------------------------------------------
// REFERENCE CLASS FORECAST SERVICE
// --------------------------------------------------

// Service serves forecast curves over the ratio columns of staged asset
// classes: how far past projects ran over their estimates, as a
// distribution a new project can be benchmarked against.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AvailableFields lists the ratio columns a curve can be built from.
func (s *Service) AvailableFields(ctx context.Context, assetClass string, verified bool) ([]string, error) {
	columns, err := s.repo.Columns(ctx, db.StageSchema(verified), assetClass)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(columns))
	for _, col := range columns {
		if strings.HasSuffix(col, "_ratio") {
			fields = append(fields, col)
		}
	}
	return fields, nil
}

// Curve builds the forecast curve for one ratio field.
func (s *Service) Curve(
	ctx context.Context,
	assetClass string,
	field string,
	numIntervals int,
	verified bool,
) (*Curve, error) {
	if numIntervals < 1 {
		return nil, ErrBadIntervals
	}

	fields, err := s.AvailableFields(ctx, assetClass, verified)
	if err != nil {
		return nil, err
	}
	if !has(fields, field) {
		return nil, ErrUnknownField
	}

	values, err := s.repo.RatioValues(ctx, db.StageSchema(verified), assetClass, field)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	sort.Float64s(values)

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	log.Printf("[RCF] curve asset_class=%s field=%s samples=%d", assetClass, field, len(values))

	return &Curve{
		AssetClass: assetClass,
		Field:      field,
		Count:      len(values),
		Mean:       sum / float64(len(values)),
		Min:        values[0],
		Max:        values[len(values)-1],
		Points:     buildCurve(values, numIntervals),
	}, nil
}

func has(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
