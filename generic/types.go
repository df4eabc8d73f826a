/*
Package generic provides the core resource caching engine.

PURPOSE:
  This package contains domain-agnostic types and algorithms for holding
  paginated REST collections in memory. Whether the resource is a hotel,
  a cab, a trip or a tenant, the same machinery handles normalization,
  pagination metadata, and the request lifecycle.

KEY CONCEPTS IN THIS FILE (types.go):
  - Entity: Any record with a numeric id
  - Money: A decimal price amount (never float64)
  - PageMeta/PageLinks: Pagination descriptors from list endpoints
  - Page: One decoded list response (data + meta + links)

DESIGN PRINCIPLES:
  1. Purity: Cache mutation returns new values, never edits in place
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Generics over the Entity constraint, no interface{} maps
  4. Normalization: One copy of each record per cache, keyed by id

USAGE:
  cache := generic.Init[Hotel]()
  cache = cache.Insert(page.Data, page.Meta, page.Links)
  for _, h := range cache.Get() { ... }

SEE ALSO:
  - cache.go: EntityCache implementation
  - reducer.go: Request-lifecycle reducer over the cache
  - store.go: Dispatch serialization and request fencing
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENTITY - Anything with a numeric id
// =============================================================================

// Entity is the constraint every cached resource satisfies. Ids are unique
// within one cache; re-inserting an id overwrites the record.
type Entity interface {
	EntityID() int64
}

// =============================================================================
// MONEY - Price amount
// =============================================================================

// Money is a price amount. Prices flow through quote reconciliation and
// manual overrides, so decimal precision is non-negotiable.
type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money           { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money           { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool          { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool    { return m.Value.GreaterThan(o.Value) }
func (m Money) String() string              { return m.Value.StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		// Some payloads quote their numbers.
		if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
			d, err = decimal.NewFromString(string(data[1 : len(data)-1]))
		}
		if err != nil {
			return err
		}
	}
	m.Value = d
	return nil
}

// =============================================================================
// PAGINATION - Meta and links from list endpoints
// =============================================================================

// PageMeta is the pagination descriptor of a list response. Fields are
// pointers so a partial payload merges shallowly: present fields overwrite,
// absent fields keep their previous value.
type PageMeta struct {
	Total       *int `json:"total,omitempty"`
	From        *int `json:"from,omitempty"`
	To          *int `json:"to,omitempty"`
	CurrentPage *int `json:"current_page,omitempty"`
	LastPage    *int `json:"last_page,omitempty"`
}

// Merge returns m with p's present fields applied.
func (m PageMeta) Merge(p PageMeta) PageMeta {
	if p.Total != nil {
		m.Total = p.Total
	}
	if p.From != nil {
		m.From = p.From
	}
	if p.To != nil {
		m.To = p.To
	}
	if p.CurrentPage != nil {
		m.CurrentPage = p.CurrentPage
	}
	if p.LastPage != nil {
		m.LastPage = p.LastPage
	}
	return m
}

// NewPageMeta builds a fully populated meta. Used by tests and the
// reference backend.
func NewPageMeta(total, from, to, currentPage, lastPage int) PageMeta {
	return PageMeta{
		Total:       &total,
		From:        &from,
		To:          &to,
		CurrentPage: &currentPage,
		LastPage:    &lastPage,
	}
}

// PageLinks carries pagination hrefs. Decoded for completeness; no consumer
// reads them yet.
type PageLinks struct {
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Page is one decoded list response.
type Page[T Entity] struct {
	Data  []T       `json:"data"`
	Meta  PageMeta  `json:"meta"`
	Links PageLinks `json:"links"`
}
