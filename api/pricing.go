/*
pricing.go - Bulk quote pricing endpoint

PURPOSE:
  Prices whole quote batches in a single call. The quote calculator
  flattens its complete rows into the `hotels` and `cabs` query arrays;
  this handler walks every stay date of every row against the stored
  seasonal price rules and answers positionally.

PRICING MODEL:
  - A hotel row prices per night: for each night of the stay the
    cheapest rule covering that date with enough capacity wins.
  - A cab row prices per day, multiplied by the number of cabs.
  - Dates with no covering rule land in no_price_for_dates; the row
    still prices whatever nights matched.

WIRE SHAPE:
  GET /api/prices?hotels=[{"hotel_id":1,"start_date":"2024-03-01",
                           "no_of_nights":2,"persons":2}]
                 &cabs=[{"cab_id":3,"start_date":"2024-03-01",
                         "no_of_days":2,"no_of_cabs":1}]
  -> {"hotels":[{"price":"9000.00"}],
      "cabs":[{"price":"3000.00","no_price_for_dates":["2024-03-02"]}]}

SEE ALSO:
  - hotels/quote.go, transport/quote.go: The consuming pricers
  - factory/rateplan.go: Where the rules come from
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/hotels"
	"github.com/voyagehq/quote-engine/pricing"
	"github.com/voyagehq/quote-engine/transport"
)

// =============================================================================
// HANDLER
// =============================================================================

// BulkPrices answers the batched pricing call of the quote calculator.
func (h *Handler) BulkPrices(w http.ResponseWriter, r *http.Request) {
	resp := map[string][]pricing.Result{}

	if raw := r.URL.Query().Get("hotels"); raw != "" {
		var queries []hotels.PriceQuery
		if err := json.Unmarshal([]byte(raw), &queries); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed hotels query.")
			return
		}
		results, err := h.priceHotels(r.Context(), queries)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		resp["hotels"] = results
	}

	if raw := r.URL.Query().Get("cabs"); raw != "" {
		var queries []transport.PriceQuery
		if err := json.Unmarshal([]byte(raw), &queries); err != nil {
			writeError(w, http.StatusBadRequest, "Malformed cabs query.")
			return
		}
		results, err := h.priceCabs(r.Context(), queries)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		resp["cabs"] = results
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// RULE MATCHING
// =============================================================================

func (h *Handler) priceHotels(ctx context.Context, queries []hotels.PriceQuery) ([]pricing.Result, error) {
	results := make([]pricing.Result, 0, len(queries))
	rulesByHotel := map[int64][]hotels.Price{}

	for _, q := range queries {
		rules, ok := rulesByHotel[q.HotelID]
		if !ok {
			var err error
			rules, err = h.Store.ListHotelPrices(ctx, q.HotelID)
			if err != nil {
				return nil, err
			}
			rulesByHotel[q.HotelID] = rules
		}

		start, err := time.ParseInLocation(dateLayout, q.StartDate, time.UTC)
		if err != nil {
			results = append(results, pricing.Result{NoPriceForDates: []string{q.StartDate}})
			continue
		}

		var total generic.Money
		var missing []string
		for i := 0; i < q.NoOfNights; i++ {
			night := start.AddDate(0, 0, i)
			rate, found := cheapestHotelRate(rules, night, q.Persons)
			if !found {
				missing = append(missing, night.Format(dateLayout))
				continue
			}
			total = total.Add(rate)
		}
		results = append(results, pricing.Result{Price: total, NoPriceForDates: missing})
	}
	return results, nil
}

// cheapestHotelRate picks the lowest rule covering the night with room
// for the requested party size.
func cheapestHotelRate(rules []hotels.Price, night time.Time, persons int) (generic.Money, bool) {
	var best generic.Money
	found := false
	for _, rule := range rules {
		if night.Before(rule.StartDate) || night.After(rule.EndDate) {
			continue
		}
		if rule.Persons < persons {
			continue
		}
		if !found || best.GreaterThan(rule.BasePrice) {
			best = rule.BasePrice
			found = true
		}
	}
	return best, found
}

func (h *Handler) priceCabs(ctx context.Context, queries []transport.PriceQuery) ([]pricing.Result, error) {
	results := make([]pricing.Result, 0, len(queries))
	rulesByCab := map[int64][]transport.Price{}

	for _, q := range queries {
		rules, ok := rulesByCab[q.CabID]
		if !ok {
			var err error
			rules, err = h.Store.ListCabPrices(ctx, q.CabID)
			if err != nil {
				return nil, err
			}
			rulesByCab[q.CabID] = rules
		}

		start, err := time.ParseInLocation(dateLayout, q.StartDate, time.UTC)
		if err != nil {
			results = append(results, pricing.Result{NoPriceForDates: []string{q.StartDate}})
			continue
		}

		cabs := q.NoOfCabs
		if cabs < 1 {
			cabs = 1
		}

		var total generic.Money
		var missing []string
		for i := 0; i < q.NoOfDays; i++ {
			day := start.AddDate(0, 0, i)
			rate, found := cheapestCabRate(rules, day)
			if !found {
				missing = append(missing, day.Format(dateLayout))
				continue
			}
			total = total.Add(rate.Mul(decimal.NewFromInt(int64(cabs))))
		}
		results = append(results, pricing.Result{Price: total, NoPriceForDates: missing})
	}
	return results, nil
}

func cheapestCabRate(rules []transport.Price, day time.Time) (generic.Money, bool) {
	var best generic.Money
	found := false
	for _, rule := range rules {
		if day.Before(rule.StartDate) || day.After(rule.EndDate) {
			continue
		}
		if !found || best.GreaterThan(rule.BasePrice) {
			best = rule.BasePrice
			found = true
		}
	}
	return best, found
}
