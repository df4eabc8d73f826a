package pricing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/pricing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(v float64) generic.Money { return generic.NewMoney(v) }

// fixedPricer returns the same price for every row in the batch.
func fixedPricer(price float64) pricing.BatchPricer {
	return pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		out := make([]pricing.Result, len(reqs))
		for i := range out {
			out[i] = pricing.Result{Price: money(price)}
		}
		return out, nil
	})
}

func completeLine(target int64) pricing.Line {
	return pricing.Line{
		StartDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		Span:      2,
		TargetID:  target,
		Occupancy: 2,
	}
}

// =============================================================================
// RECONCILIATION TESTS
// =============================================================================

func TestReprice_FreshRowFollowsCalculatedPrice(t *testing.T) {
	// GIVEN: A complete, never-overridden row
	// WHEN: Repricing returns 450
	// THEN: Both CalculatedPrice and GivenPrice become 450

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  fixedPricer(450),
		Initial: []pricing.Line{completeLine(1)},
	})
	require.NoError(t, calc.Reprice(context.Background()))

	line := calc.Lines()[0]
	require.NotNil(t, line.CalculatedPrice)
	require.NotNil(t, line.GivenPrice)
	assert.True(t, line.CalculatedPrice.Equal(money(450)))
	assert.True(t, line.GivenPrice.Equal(money(450)))
}

func TestReprice_OverriddenRowKeepsGivenPrice(t *testing.T) {
	// GIVEN: A row manually overridden to 500
	// WHEN: A recalculation returns 450
	// THEN: CalculatedPrice updates, GivenPrice stays 500

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  fixedPricer(450),
		Initial: []pricing.Line{completeLine(1)},
	})
	calc.SetGivenPrice(0, money(500))

	require.NoError(t, calc.Reprice(context.Background()))

	line := calc.Lines()[0]
	assert.True(t, line.CalculatedPrice.Equal(money(450)), "calculated should refresh")
	assert.True(t, line.GivenPrice.Equal(money(500)), "manual override must survive recalculation")
	assert.True(t, line.EditedGivenPrice)
}

func TestReprice_BatchFailureLeavesPricesIntact(t *testing.T) {
	// GIVEN: Rows already priced at 450
	// WHEN: The next batch fails
	// THEN: The error surfaces once and no price is cleared

	calls := 0
	boom := errors.New("pricing backend down")
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		calls++
		if calls == 1 {
			out := make([]pricing.Result, len(reqs))
			for i := range out {
				out[i] = pricing.Result{Price: money(450)}
			}
			return out, nil
		}
		return nil, boom
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{completeLine(1), completeLine(2)},
	})
	require.NoError(t, calc.Reprice(context.Background()))

	err := calc.Reprice(context.Background())
	require.ErrorIs(t, err, boom)
	for _, line := range calc.Lines() {
		require.NotNil(t, line.CalculatedPrice)
		assert.True(t, line.CalculatedPrice.Equal(money(450)), "failed batch must not clear prices")
	}
}

func TestReprice_NoPriceForDatesRecorded(t *testing.T) {
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		return []pricing.Result{{Price: money(0), NoPriceForDates: []string{"2024-03-02"}}}, nil
	})
	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{completeLine(1)},
	})
	require.NoError(t, calc.Reprice(context.Background()))
	assert.Equal(t, []string{"2024-03-02"}, calc.Lines()[0].NoPriceForDates)
}

func TestReprice_SkipsIncompleteRows(t *testing.T) {
	// GIVEN: One complete and one blank row
	// WHEN: Repricing
	// THEN: Only the complete row is sent and priced; positions still align

	var sent int
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		sent = len(reqs)
		out := make([]pricing.Result, len(reqs))
		for i := range out {
			out[i] = pricing.Result{Price: money(100)}
		}
		return out, nil
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{{}, completeLine(9)},
	})
	require.NoError(t, calc.Reprice(context.Background()))

	assert.Equal(t, 1, sent)
	lines := calc.Lines()
	assert.Nil(t, lines[0].CalculatedPrice, "blank row must stay unpriced")
	require.NotNil(t, lines[1].CalculatedPrice)
	assert.True(t, lines[1].CalculatedPrice.Equal(money(100)))
}

// =============================================================================
// TOTAL AGGREGATION TESTS
// =============================================================================

func TestTotal_UnsetRowsCountAsZero(t *testing.T) {
	// GIVEN: Rows with given prices 100, 200, 0, and one unpriced row
	// THEN: Total is 300

	calc := pricing.NewCalculator(pricing.Config{
		Initial: []pricing.Line{{}, {}, {}, {}},
	})
	calc.SetGivenPrice(0, money(100))
	calc.SetGivenPrice(1, money(200))
	calc.SetGivenPrice(2, money(0))

	assert.True(t, calc.Total().Equal(money(300)), "got %s", calc.Total())
}

func TestTotal_EmittedOnEveryMutation(t *testing.T) {
	var emitted []generic.Money
	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  fixedPricer(50),
		Initial: []pricing.Line{completeLine(1)},
		OnTotal: func(m generic.Money) { emitted = append(emitted, m) },
	})

	calc.SetGivenPrice(0, money(120))
	calc.Duplicate(0)
	require.NoError(t, calc.Remove(1))

	require.NotEmpty(t, emitted)
	assert.True(t, emitted[len(emitted)-1].Equal(money(120)))
	// Duplicate doubled the total before the remove undid it.
	assert.True(t, emitted[len(emitted)-2].Equal(money(240)))
}

// =============================================================================
// ROW MANAGEMENT TESTS
// =============================================================================

func TestDuplicate_CopiesComputedPrices(t *testing.T) {
	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  fixedPricer(75),
		Initial: []pricing.Line{completeLine(1)},
	})
	require.NoError(t, calc.Reprice(context.Background()))

	calc.Duplicate(0)
	lines := calc.Lines()
	require.Len(t, lines, 2)
	require.NotNil(t, lines[1].CalculatedPrice)
	assert.True(t, lines[1].CalculatedPrice.Equal(money(75)), "duplicate starts from the copied price")

	// The copies are independent.
	calc.SetGivenPrice(1, money(99))
	lines = calc.Lines()
	assert.True(t, lines[0].GivenPrice.Equal(money(75)))
	assert.True(t, lines[1].GivenPrice.Equal(money(99)))
}

func TestRemove_LastRowRefused(t *testing.T) {
	calc := pricing.NewCalculator(pricing.Config{})

	err := calc.Remove(0)
	require.ErrorIs(t, err, generic.ErrLastRow)
	assert.Len(t, calc.Lines(), 1)

	calc.Add()
	require.NoError(t, calc.Remove(0))
	assert.Len(t, calc.Lines(), 1)
}

// =============================================================================
// TRIGGER TESTS
// =============================================================================

func TestTriggers_TripFieldsReprice_PriceFieldsDoNot(t *testing.T) {
	// GIVEN: A calculator with a long debounce window
	// WHEN: Editing given price and comments, then flushing
	// THEN: No pricing call happens
	// WHEN: Editing a trip field, then flushing
	// THEN: Exactly one pricing call happens

	var calls int
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		calls++
		out := make([]pricing.Result, len(reqs))
		for i := range out {
			out[i] = pricing.Result{Price: money(10)}
		}
		return out, nil
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:   pricer,
		Debounce: time.Hour,
		Initial:  []pricing.Line{completeLine(1)},
	})
	defer calc.Close()

	calc.SetGivenPrice(0, money(500))
	calc.SetComments(0, "client asked for late checkout")
	calc.Flush()
	assert.Equal(t, 0, calls, "price/comment edits must not trigger repricing")

	calc.SetSpan(0, 3)
	calc.SetTarget(0, 4)
	calc.Flush()
	assert.Equal(t, 1, calls, "burst of trip edits should coalesce into one call")
}

func TestReprice_StaleBatchDiscarded(t *testing.T) {
	// GIVEN: A reprice blocked in flight
	// WHEN: A newer reprice completes first
	// THEN: The older response is dropped

	release := make(chan struct{})
	started := make(chan struct{})
	var call int
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		call++
		if call == 1 {
			close(started)
			<-release
			return []pricing.Result{{Price: money(111)}}, nil
		}
		return []pricing.Result{{Price: money(222)}}, nil
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{completeLine(1)},
	})

	firstDone := make(chan error, 1)
	go func() { firstDone <- calc.Reprice(context.Background()) }()
	<-started

	require.NoError(t, calc.Reprice(context.Background()))
	close(release)

	err := <-firstDone
	require.ErrorIs(t, err, generic.ErrStaleResponse)
	assert.True(t, calc.Lines()[0].CalculatedPrice.Equal(money(222)), "newer batch must win")
}

func TestReprice_RemoveDuringBatchDiscardsResponse(t *testing.T) {
	// GIVEN: A two-row reprice blocked in flight
	// WHEN: A row is removed before the batch resolves
	// THEN: The response is dropped; no result lands on a shifted row

	release := make(chan struct{})
	started := make(chan struct{})
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		close(started)
		<-release
		out := make([]pricing.Result, len(reqs))
		for i := range out {
			out[i] = pricing.Result{Price: money(333)}
		}
		return out, nil
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{completeLine(1), completeLine(2)},
	})

	done := make(chan error, 1)
	go func() { done <- calc.Reprice(context.Background()) }()
	<-started

	require.NoError(t, calc.Remove(0))
	close(release)

	err := <-done
	require.ErrorIs(t, err, generic.ErrStaleResponse)
	lines := calc.Lines()
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0].CalculatedPrice, "superseded batch must not price the surviving row")
}

func TestReprice_DuplicateDuringBatchDiscardsResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	pricer := pricing.BatchPricerFunc(func(_ context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
		close(started)
		<-release
		return []pricing.Result{{Price: money(444)}}, nil
	})

	calc := pricing.NewCalculator(pricing.Config{
		Pricer:  pricer,
		Initial: []pricing.Line{completeLine(1)},
	})

	done := make(chan error, 1)
	go func() { done <- calc.Reprice(context.Background()) }()
	<-started

	calc.Duplicate(0)
	close(release)

	require.ErrorIs(t, <-done, generic.ErrStaleResponse)
	for _, line := range calc.Lines() {
		assert.Nil(t, line.CalculatedPrice)
	}
}
