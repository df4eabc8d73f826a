/*
Package pricing implements the quote line reconciliation engine.

PURPOSE:
  A multi-leg quote (several hotel stays, several cab legs) is priced as a
  set of rows. Each row tracks the server-calculated price next to the
  price actually quoted to the customer, which staff may override by hand.
  This package keeps the two reconciled while the row's trip fields keep
  changing under the user's fingers.

ROW LIFECYCLE:
  Editing            -> trip fields incomplete, no price
  Pricing-requested  -> a tracked field changed; after the debounce window
                        ALL complete rows batch into ONE pricing call
  Priced             -> CalculatedPrice set from the response; GivenPrice
                        follows it unless the row was overridden
  Overridden         -> SetGivenPrice marks the row; later recalculations
                        update CalculatedPrice but never touch GivenPrice

REPRICING TRIGGERS:
  Only trip fields reprice: start date, span, target selection, occupancy.
  GivenPrice and Comments edits never reprice; they only re-emit the
  total. There is no guard flag to forget.

TOTALS:
  Total = sum of GivenPrice over all rows, unpriced rows counting as zero.
  OnTotal fires after every mutation so the parent quote aggregator always
  holds the current figure.

CONCURRENCY:
  Mutators may be called from UI goroutines and the debouncer's timer
  goroutine; a mutex serializes them. Overlapping reprices are versioned:
  a response from a superseded reprice is discarded.

SEE ALSO:
  - generic/debounce.go: The trailing-edge debouncer
  - hotels/quote.go, transport/quote.go: Domain bindings of this engine
*/
package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// TYPES
// =============================================================================

// Request is one row's payload for the bulk pricing call. Domain bindings
// build the concrete shape; this engine treats it as opaque.
type Request any

// Result is the per-row pricing outcome, positionally aligned with the
// request batch.
type Result struct {
	Price           generic.Money `json:"price"`
	NoPriceForDates []string      `json:"no_price_for_dates,omitempty"`
}

// BatchPricer prices a whole batch in one call. The batch fails or
// succeeds atomically from the caller's perspective.
type BatchPricer interface {
	PriceBatch(ctx context.Context, reqs []Request) ([]Result, error)
}

// BatchPricerFunc adapts a function to BatchPricer.
type BatchPricerFunc func(ctx context.Context, reqs []Request) ([]Result, error)

func (f BatchPricerFunc) PriceBatch(ctx context.Context, reqs []Request) ([]Result, error) {
	return f(ctx, reqs)
}

// Line is one priceable unit of a quote. Ephemeral form state: never
// persisted as-is, flattened into a submission payload instead.
type Line struct {
	StartDate time.Time
	Span      int   // nights for hotels, days for transport
	TargetID  int64 // hotel or cab id
	Occupancy int   // persons / rooms / cab count, domain-interpreted
	Comments  string

	CalculatedPrice  *generic.Money
	GivenPrice       *generic.Money
	EditedGivenPrice bool
	NoPriceForDates  []string
}

// Complete reports whether the row has enough trip fields to price.
func (l Line) Complete() bool {
	return l.TargetID != 0 && !l.StartDate.IsZero() && l.Span > 0
}

// BuildFunc turns a complete row into its pricing payload. Returning
// ok=false excludes the row from the batch (incomplete or domain-invalid).
type BuildFunc func(Line) (Request, bool)

// =============================================================================
// CALCULATOR
// =============================================================================

const DefaultDebounce = 300 * time.Millisecond

type Config struct {
	Pricer   BatchPricer
	Build    BuildFunc
	OnTotal  func(generic.Money)
	Debounce time.Duration // 0 means DefaultDebounce
	Initial  []Line        // empty means one blank row
}

// Calculator owns the rows of one quote form.
type Calculator struct {
	mu      sync.Mutex
	lines   []Line
	pricer  BatchPricer
	build   BuildFunc
	onTotal func(generic.Money)

	debounce   *generic.Debouncer
	repriceSeq uint64
}

func NewCalculator(cfg Config) *Calculator {
	delay := cfg.Debounce
	if delay == 0 {
		delay = DefaultDebounce
	}
	lines := cfg.Initial
	if len(lines) == 0 {
		lines = []Line{{}}
	}
	build := cfg.Build
	if build == nil {
		build = func(l Line) (Request, bool) { return l, l.Complete() }
	}
	return &Calculator{
		lines:    append([]Line(nil), lines...),
		pricer:   cfg.Pricer,
		build:    build,
		onTotal:  cfg.OnTotal,
		debounce: generic.NewDebouncer(delay),
	}
}

// Lines returns a snapshot of the rows.
func (c *Calculator) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...)
}

// Total sums GivenPrice over all rows; rows without one count as zero.
func (c *Calculator) Total() generic.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Calculator) totalLocked() generic.Money {
	var total generic.Money
	for _, l := range c.lines {
		if l.GivenPrice != nil {
			total = total.Add(*l.GivenPrice)
		}
	}
	return total
}

func (c *Calculator) emitLocked() {
	if c.onTotal == nil {
		return
	}
	total := c.totalLocked()
	fn := c.onTotal
	// Emit outside the lock; the aggregator may read back.
	c.mu.Unlock()
	fn(total)
	c.mu.Lock()
}

// =============================================================================
// TRIP-FIELD MUTATORS - these schedule a debounced reprice
// =============================================================================

func (c *Calculator) SetStartDate(i int, at time.Time) {
	c.mutateTrip(i, func(l *Line) { l.StartDate = at })
}

func (c *Calculator) SetSpan(i, span int) {
	c.mutateTrip(i, func(l *Line) { l.Span = span })
}

func (c *Calculator) SetTarget(i int, id int64) {
	c.mutateTrip(i, func(l *Line) { l.TargetID = id })
}

func (c *Calculator) SetOccupancy(i, n int) {
	c.mutateTrip(i, func(l *Line) { l.Occupancy = n })
}

func (c *Calculator) mutateTrip(i int, apply func(*Line)) {
	c.mu.Lock()
	if i < 0 || i >= len(c.lines) {
		c.mu.Unlock()
		return
	}
	apply(&c.lines[i])
	c.emitLocked()
	c.mu.Unlock()
	c.scheduleReprice()
}

func (c *Calculator) scheduleReprice() {
	c.debounce.Trigger(func() {
		_ = c.Reprice(context.Background())
	})
}

// Flush forces any pending debounced reprice to run now. Submit handlers
// and tests call this instead of waiting out the window.
func (c *Calculator) Flush() { c.debounce.Flush() }

// Close cancels pending work. Call on form unmount.
func (c *Calculator) Close() { c.debounce.Stop() }

// =============================================================================
// PRICE-FIELD MUTATORS - these never reprice
// =============================================================================

// SetGivenPrice records a manual override. The row stops following
// CalculatedPrice until the form is rebuilt.
func (c *Calculator) SetGivenPrice(i int, m generic.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return
	}
	price := m
	c.lines[i].GivenPrice = &price
	c.lines[i].EditedGivenPrice = true
	c.emitLocked()
}

func (c *Calculator) SetComments(i int, comments string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return
	}
	c.lines[i].Comments = comments
	c.emitLocked()
}

// =============================================================================
// ROW MANAGEMENT
// =============================================================================

// Add appends a blank row.
func (c *Calculator) Add() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, Line{})
	c.invalidateLocked()
	c.emitLocked()
}

// invalidateLocked supersedes any in-flight batch. Row indices captured
// before a structure change must not be replayed against the new slice.
func (c *Calculator) invalidateLocked() {
	c.repriceSeq++
}

// Duplicate copies row i in full, computed prices included, and inserts
// the copy right after it.
func (c *Calculator) Duplicate(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return
	}
	dup := c.lines[i]
	if dup.CalculatedPrice != nil {
		v := *dup.CalculatedPrice
		dup.CalculatedPrice = &v
	}
	if dup.GivenPrice != nil {
		v := *dup.GivenPrice
		dup.GivenPrice = &v
	}
	dup.NoPriceForDates = append([]string(nil), dup.NoPriceForDates...)
	c.lines = append(c.lines[:i+1], append([]Line{dup}, c.lines[i+1:]...)...)
	c.invalidateLocked()
	c.emitLocked()
}

// Remove deletes row i. A quote always keeps at least one row.
func (c *Calculator) Remove(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.lines) {
		return nil
	}
	if len(c.lines) == 1 {
		return generic.ErrLastRow
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.invalidateLocked()
	c.emitLocked()
	return nil
}

// =============================================================================
// REPRICING
// =============================================================================

// Reprice batches every complete row into one pricing call and reconciles
// the results. Overridden rows keep their GivenPrice; everyone gets the
// fresh CalculatedPrice. A failed batch leaves all previous prices intact.
// If a newer reprice starts before this one resolves, or a row is added,
// duplicated or removed meanwhile, this one's response is discarded: the
// captured row indices no longer describe the slice.
func (c *Calculator) Reprice(ctx context.Context) error {
	c.mu.Lock()
	if c.pricer == nil {
		c.mu.Unlock()
		return nil
	}
	c.repriceSeq++
	seq := c.repriceSeq

	reqs := make([]Request, 0, len(c.lines))
	rowFor := make([]int, 0, len(c.lines))
	for i, l := range c.lines {
		if req, ok := c.build(l); ok {
			reqs = append(reqs, req)
			rowFor = append(rowFor, i)
		}
	}
	c.mu.Unlock()

	if len(reqs) == 0 {
		return nil
	}

	results, err := c.pricer.PriceBatch(ctx, reqs)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.repriceSeq {
		return generic.ErrStaleResponse
	}
	for pos, row := range rowFor {
		if pos >= len(results) {
			break
		}
		res := results[pos]
		price := res.Price
		c.lines[row].CalculatedPrice = &price
		c.lines[row].NoPriceForDates = res.NoPriceForDates
		if !c.lines[row].EditedGivenPrice {
			given := res.Price
			c.lines[row].GivenPrice = &given
		}
	}
	c.emitLocked()
	return nil
}
