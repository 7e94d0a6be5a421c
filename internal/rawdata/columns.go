package rawdata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SQL types a dataset column can load as. The type is inferred from the
// column name, never from the data.
const (
	TypeInteger = "INTEGER"
	TypeBoolean = "BOOLEAN"
	TypeDate    = "DATE"
	TypeFloat   = "DOUBLE PRECISION"
	TypeVarchar = "VARCHAR"
)

const DateFormat = "2006-01-02"

var (
	ErrDuplicateHeader   = errors.New("duplicate headers found")
	ErrPrimaryKeyMissing = errors.New("required primary keys missing")
	ErrBadColumnName     = errors.New("column names may only contain a-z, 0-9 and _")
)

// PrimaryKeys identify a project record in every raw and stage table.
var PrimaryKeys = []string{"project_id", "sample"}

var floatSuffixes = []string{
	"_millions",
	"_value",
	"_ratio",
	"_duration",
	"_thousands",
	"_rate",
}

type Column struct {
	Name string
	Type string
}

// DataType infers the SQL type of a column from its name.
func DataType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "_year"):
		return TypeInteger
	case strings.HasPrefix(lower, "is_"):
		return TypeBoolean
	case strings.HasSuffix(lower, "_date"):
		return TypeDate
	}
	for _, suffix := range floatSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return TypeFloat
		}
	}
	return TypeVarchar
}

// NormalizeHeader lowercases a CSV header and strips the UTF-8 BOM some
// spreadsheet exports prepend to the first column.
func NormalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "﻿")))
}

func validColumnName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// BuildColumns validates CSV headers and maps them to typed columns.
// Duplicate headers and missing primary keys reject the whole file.
func BuildColumns(headers []string) ([]Column, error) {
	columns := make([]Column, 0, len(headers))
	seen := make(map[string]bool, len(headers))

	for _, h := range headers {
		name := NormalizeHeader(h)
		if !validColumnName(name) {
			return nil, fmt.Errorf("%w: %q", ErrBadColumnName, h)
		}
		if seen[name] {
			return nil, ErrDuplicateHeader
		}
		seen[name] = true
		columns = append(columns, Column{Name: name, Type: DataType(name)})
	}

	for _, pk := range PrimaryKeys {
		if !seen[pk] {
			return nil, ErrPrimaryKeyMissing
		}
	}

	return columns, nil
}

// ParseValue converts a CSV cell into the column's Go value.
// Empty cells load as NULL.
func ParseValue(columnType, value string) (any, error) {
	if value == "" {
		return nil, nil
	}

	switch columnType {
	case TypeInteger:
		return strconv.Atoi(value)
	case TypeFloat:
		return strconv.ParseFloat(value, 64)
	case TypeBoolean:
		switch strings.ToLower(value) {
		case "y", "yes", "t", "true", "on", "1":
			return true, nil
		default:
			return false, nil
		}
	case TypeDate:
		return time.Parse(DateFormat, value)
	default:
		return value, nil
	}
}

// CoerceValue converts a JSON-decoded value into the column's Go value.
// Used by the record endpoints, where numbers arrive as float64.
func CoerceValue(columnType string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch columnType {
	case TypeInteger:
		switch v := value.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case string:
			return strconv.Atoi(v)
		}
	case TypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(v, 64)
		}
	case TypeBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return ParseValue(TypeBoolean, v)
		}
	case TypeDate:
		if v, ok := value.(string); ok {
			return time.Parse(DateFormat, v)
		}
	default:
		if v, ok := value.(string); ok {
			return v, nil
		}
		return fmt.Sprintf("%v", value), nil
	}

	return nil, fmt.Errorf("cannot store %T in a %s column", value, columnType)
}
