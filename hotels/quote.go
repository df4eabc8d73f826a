/*
quote.go - Hotel binding of the quote calculator

PURPOSE:
  Adapts pricing.Calculator to the hotel side of the bulk pricing
  endpoint. Every complete row flattens into one element of the `hotels`
  query array; the response prices come back positionally.

WIRE SHAPE:
  GET /prices?hotels=[{"hotel_id":1,"start_date":"2024-03-01",
                       "no_of_nights":2,"persons":2}, ...]
  -> {"hotels":[{"price":"4500","no_price_for_dates":["2024-03-02"]}, ...]}

SEE ALSO:
  - pricing/calculator.go: The engine being bound
  - transport/quote.go: The cab twin
*/
package hotels

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/voyagehq/quote-engine/client"
	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/pricing"
)

// =============================================================================
// BULK PRICING
// =============================================================================

// PriceQuery is one hotel row of the bulk pricing call.
type PriceQuery struct {
	HotelID    int64  `json:"hotel_id"`
	StartDate  string `json:"start_date"`
	NoOfNights int    `json:"no_of_nights"`
	Persons    int    `json:"persons"`
}

const dateLayout = "2006-01-02"

func buildQuery(l pricing.Line) (pricing.Request, bool) {
	if !l.Complete() {
		return nil, false
	}
	return PriceQuery{
		HotelID:    l.TargetID,
		StartDate:  l.StartDate.UTC().Format(dateLayout),
		NoOfNights: l.Span,
		Persons:    l.Occupancy,
	}, true
}

// Pricer calls the bulk pricing endpoint for hotel rows.
type Pricer struct {
	Client *client.Client
}

func (p Pricer) PriceBatch(ctx context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
	encoded, err := json.Marshal(reqs)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Hotels []pricing.Result `json:"hotels"`
	}
	query := url.Values{"hotels": {string(encoded)}}
	if err := p.Client.Do(ctx, http.MethodGet, "/prices", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hotels, nil
}

// =============================================================================
// CALCULATOR FACTORY
// =============================================================================

// NewQuoteCalculator builds a hotel quote calculator wired to the backend.
// onTotal receives the running quote total after every row mutation.
func NewQuoteCalculator(c *client.Client, debounce time.Duration, onTotal func(generic.Money)) *pricing.Calculator {
	return pricing.NewCalculator(pricing.Config{
		Pricer:   Pricer{Client: c},
		Build:    buildQuery,
		Debounce: debounce,
		OnTotal:  onTotal,
	})
}
