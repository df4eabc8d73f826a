/*
cache.go - Normalized entity cache with pagination metadata

PURPOSE:
  Holds one REST collection in memory, normalized by id: an ordered index
  of ids plus a map from id to record. Records keep the order they were
  FIRST seen in, not the server's sort order on later pages.

INVARIANTS:
  - Ids are unique in the order index; re-inserting an id overwrites the
    record without duplicating the index entry.
  - Insert is pure: it returns a new cache and leaves the receiver intact.
    Callers holding an old value keep a consistent snapshot.
  - This layer never fails. It is data transformation only.

META DEFAULTS:
  Before any meta arrives, accessors report total=0, from=0, to=0,
  currentPage=1, lastPage=1 so pagination controls render sanely on an
  empty cache.

SEE ALSO:
  - types.go: Entity constraint, PageMeta
  - reducer.go: How list/item responses reach Insert
*/
package generic

// =============================================================================
// ENTITY CACHE
// =============================================================================

// EntityCache is a normalized, insertion-ordered store of one resource's
// records. The zero value is NOT usable; call Init.
type EntityCache[T Entity] struct {
	order []int64
	byID  map[int64]T
	meta  PageMeta
	links PageLinks
}

// Init returns an empty cache, optionally pre-populated.
func Init[T Entity](items ...T) EntityCache[T] {
	c := EntityCache[T]{byID: make(map[int64]T)}
	if len(items) == 0 {
		return c
	}
	return c.Insert(items, PageMeta{}, PageLinks{})
}

// Insert returns a copy of the cache with items applied: new ids are
// appended to the order index, known ids are overwritten in place. Meta
// merges shallowly; links replace when any field is present.
func (c EntityCache[T]) Insert(items []T, meta PageMeta, links PageLinks) EntityCache[T] {
	next := EntityCache[T]{
		order: make([]int64, len(c.order), len(c.order)+len(items)),
		byID:  make(map[int64]T, len(c.byID)+len(items)),
		meta:  c.meta.Merge(meta),
		links: c.links,
	}
	copy(next.order, c.order)
	for id, item := range c.byID {
		next.byID[id] = item
	}
	for _, item := range items {
		id := item.EntityID()
		if _, seen := next.byID[id]; !seen {
			next.order = append(next.order, id)
		}
		next.byID[id] = item
	}
	if links != (PageLinks{}) {
		next.links = links
	}
	return next
}

// Prepend returns a copy with item at the front of the order. A known id
// moves to the front and its record is overwritten. Used by push-style
// resources (notifications); list pages never prepend.
func (c EntityCache[T]) Prepend(item T) EntityCache[T] {
	id := item.EntityID()
	next := EntityCache[T]{
		order: make([]int64, 0, len(c.order)+1),
		byID:  make(map[int64]T, len(c.byID)+1),
		meta:  c.meta,
		links: c.links,
	}
	next.order = append(next.order, id)
	for _, existing := range c.order {
		if existing != id {
			next.order = append(next.order, existing)
		}
	}
	for k, v := range c.byID {
		next.byID[k] = v
	}
	next.byID[id] = item
	return next
}

// Get returns the records in the order their ids were first seen.
func (c EntityCache[T]) Get() []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// GetItem looks up a record by id.
func (c EntityCache[T]) GetItem(id int64) (T, bool) {
	item, ok := c.byID[id]
	return item, ok
}

func (c EntityCache[T]) Len() int { return len(c.order) }

// =============================================================================
// META ACCESSORS - with unset defaults
// =============================================================================

func (c EntityCache[T]) Total() int       { return metaOr(c.meta.Total, 0) }
func (c EntityCache[T]) From() int        { return metaOr(c.meta.From, 0) }
func (c EntityCache[T]) To() int          { return metaOr(c.meta.To, 0) }
func (c EntityCache[T]) CurrentPage() int { return metaOr(c.meta.CurrentPage, 1) }
func (c EntityCache[T]) LastPage() int    { return metaOr(c.meta.LastPage, 1) }
func (c EntityCache[T]) Links() PageLinks { return c.links }

func metaOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
