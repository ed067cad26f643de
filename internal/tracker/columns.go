package tracker

import (
	"fmt"
	"slices"
	"strings"
)

// Column is one lane of the board.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Columns is the ordered set of board lanes.
type Columns []Column

var DefaultColumnIDs = []string{
	StatusSaved,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

// NewColumns builds lanes from ids, titling each one from its id.
func NewColumns(ids []string) (Columns, error) {
	ret := make(Columns, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, raw := range ids {
		id := strings.ToLower(strings.TrimSpace(raw))
		if id == "" {
			continue
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate column %q", id)
		}
		seen[id] = true
		ret = append(ret, Column{ID: id, Title: titleFromID(id)})
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	return ret, nil
}

func DefaultColumns() Columns {
	cols, _ := NewColumns(DefaultColumnIDs)
	return cols
}

func (c Columns) Has(id string) bool {
	return c.Index(id) >= 0
}

func (c Columns) Index(id string) int {
	return slices.IndexFunc(c, func(col Column) bool { return col.ID == id })
}

func (c Columns) IDs() []string {
	ret := make([]string, len(c))
	for i, col := range c {
		ret[i] = col.ID
	}
	return ret
}

func titleFromID(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
