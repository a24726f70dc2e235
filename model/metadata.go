package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/siherrmann/grounder/helper"
)

// Well known metadata keys set by the document loader
const (
	MetadataKeyFormat    = "format"
	MetadataKeyPageCount = "page_count"
	MetadataKeyPath      = "path"
)

// Metadata holds free-form attributes of a document or index record.
// It is stored as JSONB in PostgreSQL and as an object in the JSON index.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return helper.NewError("metadata scan", errors.New("type assertion to []byte failed"))
	}
}

// String returns the value of key formatted as string, or "" if it is missing
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Merge returns a new Metadata with the entries of other overriding those of m
func (m Metadata) Merge(other Metadata) Metadata {
	merged := make(Metadata, len(m)+len(other))
	for k, v := range m {
		merged[k] = v
	}
	for k, v := range other {
		merged[k] = v
	}
	return merged
}
