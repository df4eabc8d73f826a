/*
reducer.go - Request-lifecycle reducer over the entity cache

PURPOSE:
  Wires the three-phase request lifecycle (request/success/failure) for
  list and item fetches onto an EntityCache. Every resource store in the
  system runs this same reducer; resources with extra actions (e.g. a
  notification push) supply an extra reducer consulted after the generic
  switch falls through.

THE LOAD-BEARING ASYMMETRY:
  - A list success REPLACES the cache: the page's records are inserted
    into a fresh cache, so the visible window is exactly the last page
    fetched. Cumulative list merging would scramble pagination.
  - An item success UPSERTS into the existing cache, preserving whatever
    the last list fetch loaded.
  Preserve this exactly. It is the one subtle invariant of the system.

FAILURES:
  A failure only clears IsFetching. No error is retained in state; the
  caller of the fetch receives the error directly (see errors.go on the
  dual propagation policy).

SEE ALSO:
  - cache.go: Insert semantics
  - store.go: Who dispatches these actions
*/
package generic

// =============================================================================
// STATE & ACTIONS
// =============================================================================

// State is one resource's slice of the store: a fetch flag plus the cache.
type State[T Entity] struct {
	IsFetching bool
	Cache      EntityCache[T]
}

// NewState returns the initial state with an empty cache.
func NewState[T Entity]() State[T] {
	return State[T]{Cache: Init[T]()}
}

type ActionKind string

const (
	ActionListRequest ActionKind = "list/request"
	ActionListSuccess ActionKind = "list/success"
	ActionListFailure ActionKind = "list/failure"
	ActionItemRequest ActionKind = "item/request"
	ActionItemSuccess ActionKind = "item/success"
	ActionItemFailure ActionKind = "item/failure"
	ActionCustom      ActionKind = "custom"
)

// Action is one dispatched state transition. Exactly one payload field is
// meaningful for a given kind: Page for list success, Item for item
// success, Name/Payload for custom actions.
type Action[T Entity] struct {
	Kind    ActionKind
	Page    Page[T]
	Item    T
	Name    string
	Payload any
}

// Reducer computes the next state for an action. Reducers are pure; the
// store serializes their application.
type Reducer[T Entity] func(State[T], Action[T]) State[T]

// =============================================================================
// REDUCER FACTORY
// =============================================================================

// NewReducer builds the standard lifecycle reducer. extra may be nil; when
// set it handles custom actions (and any kind the generic switch ignores).
func NewReducer[T Entity](extra Reducer[T]) Reducer[T] {
	return func(s State[T], a Action[T]) State[T] {
		switch a.Kind {
		case ActionListRequest, ActionItemRequest:
			s.IsFetching = true
			return s

		case ActionListSuccess:
			// Replace, not merge: fresh cache seeded from this page only.
			s.IsFetching = false
			s.Cache = Init[T]().Insert(a.Page.Data, a.Page.Meta, a.Page.Links)
			return s

		case ActionItemSuccess:
			s.IsFetching = false
			s.Cache = s.Cache.Insert([]T{a.Item}, PageMeta{}, PageLinks{})
			return s

		case ActionListFailure, ActionItemFailure:
			s.IsFetching = false
			return s
		}

		if extra != nil {
			return extra(s, a)
		}
		return s
	}
}
