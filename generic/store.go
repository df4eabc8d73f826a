/*
store.go - Per-resource store: dispatch serialization and request fencing

PURPOSE:
  Owns one resource's State and serializes every transition through the
  reducer. The store is an explicit object handed to whoever needs it
  (constructor injection); there is no ambient singleton.

CONCURRENCY MODEL:
  Single-writer, multiple-reader. A mutex serializes reducer application,
  making each dispatched action atomic. View() returns an eagerly computed
  snapshot, so readers never observe a half-applied transition.

REQUEST FENCING:
  Overlapping list fetches for the same resource race: without fencing the
  last RESPONSE wins, which can overwrite newer data with stale data when
  a user pages twice quickly. The store issues a monotonically increasing
  request id per list fetch and discards any response that is not from the
  newest issued request. The discarded caller gets ErrStaleResponse.

  Item fetches are not fenced: an item success is an idempotent upsert and
  carries no pagination window, so a stale item response is harmless.

SUBSCRIPTIONS:
  Subscribe registers a callback invoked after every applied action with
  the new state. Callbacks run outside the store lock; a callback may
  dispatch again without deadlocking.

SEE ALSO:
  - reducer.go: The transitions being serialized
  - errors.go: ErrStaleResponse
*/
package generic

import (
	"context"
	"sync"
)

// =============================================================================
// RESOURCE STORE
// =============================================================================

// ResourceStore holds one resource's state and applies actions in order.
type ResourceStore[T Entity] struct {
	name   string
	reduce Reducer[T]

	mu      sync.Mutex
	state   State[T]
	subs    map[int]func(State[T])
	nextSub int

	reqSeq     uint64 // last issued list request id
	activeList uint64 // request id currently owning IsFetching, 0 when idle
}

// NewResourceStore creates a store for the named resource. extra may be
// nil; see NewReducer.
func NewResourceStore[T Entity](name string, extra Reducer[T]) *ResourceStore[T] {
	return &ResourceStore[T]{
		name:   name,
		reduce: NewReducer(extra),
		state:  NewState[T](),
		subs:   make(map[int]func(State[T])),
	}
}

func (s *ResourceStore[T]) Name() string { return s.name }

// Dispatch applies an action through the reducer and notifies subscribers.
func (s *ResourceStore[T]) Dispatch(a Action[T]) {
	s.mu.Lock()
	s.state = s.reduce(s.state, a)
	next := s.state
	subs := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// DispatchCustom dispatches a named action for the extra reducer.
func (s *ResourceStore[T]) DispatchCustom(name string, payload any) {
	s.Dispatch(Action[T]{Kind: ActionCustom, Name: name, Payload: payload})
}

// State returns the current state snapshot.
func (s *ResourceStore[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns its unsubscribe function.
func (s *ResourceStore[T]) Subscribe(fn func(State[T])) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// =============================================================================
// VIEW - Eagerly computed selector surface
// =============================================================================

// View is the computed read surface a page binds to. Plain fields, no
// getter indirection; computed when View() runs.
type View[T Entity] struct {
	Items       []T
	IsFetching  bool
	Total       int
	From        int
	To          int
	CurrentPage int
	LastPage    int
}

func (s *ResourceStore[T]) View() View[T] {
	st := s.State()
	return View[T]{
		Items:       st.Cache.Get(),
		IsFetching:  st.IsFetching,
		Total:       st.Cache.Total(),
		From:        st.Cache.From(),
		To:          st.Cache.To(),
		CurrentPage: st.Cache.CurrentPage(),
		LastPage:    st.Cache.LastPage(),
	}
}

// Item looks up a cached record by id.
func (s *ResourceStore[T]) Item(id int64) (T, bool) {
	return s.State().Cache.GetItem(id)
}

// =============================================================================
// FETCH THUNKS - lifecycle dispatch around a network call
// =============================================================================

// FetchList runs fetch inside the list lifecycle with fencing. The fetch
// error (or ErrStaleResponse) is returned to the caller in addition to the
// failure dispatch, so forms can render it.
func (s *ResourceStore[T]) FetchList(ctx context.Context, fetch func(context.Context) (Page[T], error)) error {
	s.mu.Lock()
	s.reqSeq++
	req := s.reqSeq
	s.activeList = req
	s.mu.Unlock()
	s.Dispatch(Action[T]{Kind: ActionListRequest})

	page, err := fetch(ctx)

	s.mu.Lock()
	stale := req != s.activeList || req != s.reqSeq
	if !stale {
		s.activeList = 0
	}
	s.mu.Unlock()
	if stale {
		// A newer list fetch owns the state now; drop this response.
		return ErrStaleResponse
	}

	if err != nil {
		s.Dispatch(Action[T]{Kind: ActionListFailure})
		return err
	}
	s.Dispatch(Action[T]{Kind: ActionListSuccess, Page: page})
	return nil
}

// FetchItem runs fetch inside the item lifecycle. No fencing; the success
// is an idempotent upsert.
func (s *ResourceStore[T]) FetchItem(ctx context.Context, fetch func(context.Context) (T, error)) error {
	s.Dispatch(Action[T]{Kind: ActionItemRequest})

	item, err := fetch(ctx)
	if err != nil {
		s.Dispatch(Action[T]{Kind: ActionItemFailure})
		return err
	}
	s.Dispatch(Action[T]{Kind: ActionItemSuccess, Item: item})
	return nil
}
