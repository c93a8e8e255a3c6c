// Package registry queries external drug registries by medicine name and
// merges their results. Sources are independent and best-effort: a failing or
// slow source contributes nothing and never aborts the others.
package registry

import (
	"context"
	"encoding/json"
)

// Record is a candidate drug entry normalized from a source payload. Records
// are ephemeral; they exist only for the duration of matching.
type Record struct {
	Source       string          `json:"source"`
	ID           string          `json:"medicine_id,omitempty"`
	BrandName    string          `json:"brand_name"`
	GenericName  string          `json:"generic_name,omitempty"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Country      string          `json:"country,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// Source is a named external registry queried by medicine name. Sources are
// stateless and safe for concurrent use.
type Source interface {
	Name() string
	Search(ctx context.Context, name string) ([]Record, error)
}

// Outcome records the result of one source call, success or failure, so
// aggregation stays total without silently discarding errors.
type Outcome struct {
	Source  string
	Records []Record
	Err     error
}
