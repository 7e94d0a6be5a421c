package rawdata

import "errors"

var (
	ErrRecordNotFound = errors.New("record does not exist")
	ErrRecordExists   = errors.New("record already exists")
	ErrTableNotFound  = errors.New("table does not exist")
	ErrFileNotFound   = errors.New("file does not exist")
)

// Record is one project row addressed by its primary key pair.
type Record struct {
	ProjectID string         `json:"project_id"`
	Sample    string         `json:"sample"`
	Data      map[string]any `json:"data"`
}
