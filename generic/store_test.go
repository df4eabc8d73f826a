package generic_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// FETCH LIFECYCLE TESTS
// =============================================================================

func TestStore_FetchList_SuccessPopulatesView(t *testing.T) {
	store := generic.NewResourceStore[record]("records", nil)
	ctx := context.Background()

	err := store.FetchList(ctx, func(context.Context) (generic.Page[record], error) {
		return page(record{1, "a"}, record{2, "b"}), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := store.View()
	if v.IsFetching {
		t.Error("IsFetching should clear after success")
	}
	if len(v.Items) != 2 || v.Total != 2 || v.CurrentPage != 1 {
		t.Errorf("unexpected view: items=%d total=%d page=%d", len(v.Items), v.Total, v.CurrentPage)
	}
}

func TestStore_FetchList_FailureClearsFetchingAndReturnsError(t *testing.T) {
	store := generic.NewResourceStore[record]("records", nil)
	boom := errors.New("boom")

	err := store.FetchList(context.Background(), func(context.Context) (generic.Page[record], error) {
		return generic.Page[record]{}, boom
	})

	if !errors.Is(err, boom) {
		t.Errorf("fetch error must reach the caller, got %v", err)
	}
	v := store.View()
	if v.IsFetching {
		t.Error("failure should clear IsFetching")
	}
	if len(v.Items) != 0 {
		t.Error("failure must not touch the cache")
	}
}

// =============================================================================
// REQUEST FENCING TESTS
// =============================================================================

func TestStore_FetchList_StaleResponseDiscarded(t *testing.T) {
	// GIVEN: two overlapping list fetches, the FIRST resolving last
	// WHEN: both complete
	// THEN: the newer request's page stays in the cache and the older
	//       caller gets ErrStaleResponse

	store := generic.NewResourceStore[record]("records", nil)
	ctx := context.Background()

	firstStarted := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = store.FetchList(ctx, func(context.Context) (generic.Page[record], error) {
			close(firstStarted)
			<-release
			return page(record{1, "stale-page"}), nil
		})
	}()

	<-firstStarted
	// Second fetch issued while the first is in flight; resolves immediately.
	if err := store.FetchList(ctx, func(context.Context) (generic.Page[record], error) {
		return page(record{2, "fresh-page"}), nil
	}); err != nil {
		t.Fatalf("newer fetch should succeed: %v", err)
	}

	close(release)
	wg.Wait()

	if !generic.IsStale(firstErr) {
		t.Errorf("older fetch should report staleness, got %v", firstErr)
	}
	v := store.View()
	if len(v.Items) != 1 || v.Items[0].ID != 2 {
		t.Errorf("stale response overwrote newer data: %+v", v.Items)
	}
}

func TestStore_FetchItem_NotFenced(t *testing.T) {
	// Item upserts are idempotent; a slow item response still lands.
	store := generic.NewResourceStore[record]("records", nil)
	ctx := context.Background()

	if err := store.FetchList(ctx, func(context.Context) (generic.Page[record], error) {
		return page(record{1, "a"}), nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.FetchItem(ctx, func(context.Context) (record, error) {
		return record{5, "late-item"}, nil
	}); err != nil {
		t.Fatal(err)
	}

	if _, ok := store.Item(5); !ok {
		t.Error("item fetch should upsert regardless of list fencing")
	}
}

// =============================================================================
// SUBSCRIPTION TESTS
// =============================================================================

func TestStore_Subscribe_NotifiedPerAction_AndUnsubscribe(t *testing.T) {
	store := generic.NewResourceStore[record]("records", nil)

	var calls int
	unsub := store.Subscribe(func(generic.State[record]) { calls++ })

	store.Dispatch(generic.Action[record]{Kind: generic.ActionListRequest})
	store.Dispatch(generic.Action[record]{Kind: generic.ActionListFailure})
	if calls != 2 {
		t.Errorf("expected 2 notifications, got %d", calls)
	}

	unsub()
	store.Dispatch(generic.Action[record]{Kind: generic.ActionListRequest})
	if calls != 2 {
		t.Errorf("unsubscribed callback still invoked: %d", calls)
	}
}

func TestStore_SubscriberMayDispatch(t *testing.T) {
	// Callbacks run outside the store lock, so reacting with another
	// dispatch must not deadlock.
	store := generic.NewResourceStore[record]("records", nil)

	done := make(chan struct{})
	var once sync.Once
	store.Subscribe(func(s generic.State[record]) {
		once.Do(func() {
			store.Dispatch(generic.Action[record]{Kind: generic.ActionListFailure})
			close(done)
		})
	})

	store.Dispatch(generic.Action[record]{Kind: generic.ActionListRequest})
	<-done

	if store.View().IsFetching {
		t.Error("nested dispatch should have applied")
	}
}
