package generic_test

import (
	"testing"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type record struct {
	ID   int64
	Name string
}

func (r record) EntityID() int64 { return r.ID }

func ids(items []record) []int64 {
	out := make([]int64, len(items))
	for i, r := range items {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// INSERT TESTS
// =============================================================================

func TestCache_Insert_Idempotent(t *testing.T) {
	// GIVEN: Overlapping inserts sharing ids
	// WHEN: Reading the cache back
	// THEN: Length equals the distinct id count, latest value wins

	c := generic.Init[record]()
	c = c.Insert([]record{{1, "a"}, {2, "b"}}, generic.PageMeta{}, generic.PageLinks{})
	c = c.Insert([]record{{2, "b2"}, {3, "c"}}, generic.PageMeta{}, generic.PageLinks{})
	c = c.Insert([]record{{1, "a3"}}, generic.PageMeta{}, generic.PageLinks{})

	if c.Len() != 3 {
		t.Fatalf("expected 3 distinct ids, got %d", c.Len())
	}
	got, ok := c.GetItem(2)
	if !ok || got.Name != "b2" {
		t.Errorf("expected id 2 to hold latest value b2, got %+v (ok=%v)", got, ok)
	}
	got, _ = c.GetItem(1)
	if got.Name != "a3" {
		t.Errorf("expected id 1 to hold latest value a3, got %q", got.Name)
	}
}

func TestCache_Insert_PreservesFirstSeenOrder(t *testing.T) {
	// GIVEN: [1,2] inserted, then an update-only insert of [1]
	// WHEN: Reading order
	// THEN: Order stays [1,2], not [2,1]

	c := generic.Init[record]()
	c = c.Insert([]record{{1, "a"}, {2, "b"}}, generic.PageMeta{}, generic.PageLinks{})
	c = c.Insert([]record{{1, "a2"}}, generic.PageMeta{}, generic.PageLinks{})

	if got := ids(c.Get()); !equalIDs(got, []int64{1, 2}) {
		t.Errorf("expected order [1 2], got %v", got)
	}
}

func TestCache_Insert_IsPure(t *testing.T) {
	// GIVEN: A populated cache
	// WHEN: Inserting into it
	// THEN: The original value is untouched

	base := generic.Init(record{1, "a"})
	next := base.Insert([]record{{1, "mutated"}, {2, "b"}}, generic.PageMeta{}, generic.PageLinks{})

	if base.Len() != 1 {
		t.Errorf("original cache grew: len=%d", base.Len())
	}
	if got, _ := base.GetItem(1); got.Name != "a" {
		t.Errorf("original cache mutated: %q", got.Name)
	}
	if next.Len() != 2 {
		t.Errorf("new cache should hold 2, got %d", next.Len())
	}
}

func TestCache_Insert_NoItems(t *testing.T) {
	c := generic.Init(record{1, "a"})
	c = c.Insert(nil, generic.NewPageMeta(10, 1, 1, 2, 5), generic.PageLinks{})

	if c.Len() != 1 {
		t.Errorf("item list should be untouched, len=%d", c.Len())
	}
	if c.Total() != 10 || c.CurrentPage() != 2 {
		t.Errorf("meta should still merge: total=%d page=%d", c.Total(), c.CurrentPage())
	}
}

// =============================================================================
// META TESTS
// =============================================================================

func TestCache_MetaDefaults(t *testing.T) {
	c := generic.Init[record]()

	if c.Total() != 0 || c.From() != 0 || c.To() != 0 {
		t.Errorf("expected zero total/from/to, got %d/%d/%d", c.Total(), c.From(), c.To())
	}
	if c.CurrentPage() != 1 || c.LastPage() != 1 {
		t.Errorf("expected page defaults 1/1, got %d/%d", c.CurrentPage(), c.LastPage())
	}
}

func TestCache_MetaShallowMerge(t *testing.T) {
	// GIVEN: Full meta, then a partial meta with only total
	// WHEN: Merging
	// THEN: Present fields overwrite, absent fields survive

	c := generic.Init[record]()
	c = c.Insert(nil, generic.NewPageMeta(40, 1, 20, 2, 2), generic.PageLinks{})

	total := 55
	c = c.Insert(nil, generic.PageMeta{Total: &total}, generic.PageLinks{})

	if c.Total() != 55 {
		t.Errorf("total should overwrite to 55, got %d", c.Total())
	}
	if c.CurrentPage() != 2 || c.LastPage() != 2 || c.To() != 20 {
		t.Errorf("absent fields should survive merge: page=%d last=%d to=%d",
			c.CurrentPage(), c.LastPage(), c.To())
	}
}

func TestCache_GetItem_Missing(t *testing.T) {
	c := generic.Init(record{1, "a"})
	if _, ok := c.GetItem(99); ok {
		t.Error("expected miss for unknown id")
	}
}
