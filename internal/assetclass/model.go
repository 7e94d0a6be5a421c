package assetclass

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrBadClassName  = errors.New("asset class names must be lowercase, with underscores instead of spaces")
	ErrClassExists   = errors.New("asset class already exists")
	ErrClassNotFound = errors.New("asset class not found")
)

type AssetClass struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ClassInfo is the listing view of an asset class: the registry row plus
// whether a stage table has been built for it in the requested area.
type ClassInfo struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Staged    bool      `json:"staged"`
}

var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Normalize maps free text to canonical asset class form.
func Normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// ValidName reports whether a name is already in canonical form. Names are
// used verbatim as schema-qualified table names and folder names, so they
// are rejected rather than silently rewritten.
func ValidName(name string) bool {
	return name != "" && Normalize(name) == name && validName.MatchString(name)
}
