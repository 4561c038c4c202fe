package quotes

import "stock-ticker/pkg/models"

const (
	// DefaultMaxIDLen bounds symbol ids; an id must be strictly shorter.
	DefaultMaxIDLen = 10
	// DefaultMaxSymbols is the registry capacity.
	DefaultMaxSymbols = 32
)

// Registry is a fixed-capacity, insertion-ordered list of quotes. It is
// allocated once and never reordered; lookups are a linear scan, which is
// cheaper than hashing at this size.
type Registry struct {
	quotes   []models.Quote
	maxIDLen int
}

func NewRegistry(maxSymbols, maxIDLen int) *Registry {
	return &Registry{
		quotes:   make([]models.Quote, 0, maxSymbols),
		maxIDLen: maxIDLen,
	}
}

// Add appends id with no price. It reports false, leaving the registry
// untouched, if the id is too long or the registry is full.
func (r *Registry) Add(id string) bool {
	if len(id) >= r.maxIDLen || len(r.quotes) == cap(r.quotes) {
		return false
	}
	r.quotes = append(r.quotes, models.Quote{ID: id, Price: models.NoPrice})
	return true
}

// Lookup returns the record for id, or nil.
func (r *Registry) Lookup(id string) *models.Quote {
	for i := range r.quotes {
		if r.quotes[i].ID == id {
			return &r.quotes[i]
		}
	}
	return nil
}

func (r *Registry) Len() int {
	return len(r.quotes)
}

func (r *Registry) IDs() []string {
	ids := make([]string, len(r.quotes))
	for i, q := range r.quotes {
		ids[i] = q.ID
	}
	return ids
}

// Quotes returns a copy of the records in configuration order.
func (r *Registry) Quotes() []models.Quote {
	out := make([]models.Quote, len(r.quotes))
	copy(out, r.quotes)
	return out
}
