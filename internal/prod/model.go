package prod

import "errors"

var ErrNoStageTables = errors.New("no verified stage tables to publish")

const (
	Schema = "prod"
	Table  = "projects"
)

// Result summarizes one production rebuild.
type Result struct {
	RowsPublished int      `json:"rows_published"`
	AssetClasses  []string `json:"asset_classes"`
}
