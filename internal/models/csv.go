package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// CSVList stores a list of strings as a comma-separated TEXT column.
type CSVList []string

// Value implements driver.Valuer.
func (l CSVList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner.
func (l *CSVList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = splitCSV(v)
		return nil
	case []byte:
		*l = splitCSV(string(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CSVList", src)
	}
}

// Contains reports whether the list holds item, compared case-insensitively.
func (l CSVList) Contains(item string) bool {
	for _, existing := range l {
		if strings.EqualFold(existing, item) {
			return true
		}
	}
	return false
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
