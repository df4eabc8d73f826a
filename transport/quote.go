package transport

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

// PriceQuery is one cab row of the bulk pricing call. Cab legs span days,
// not nights.
type PriceQuery struct {
	CabID     int64  `json:"cab_id"`
	StartDate string `json:"start_date"`
	NoOfDays  int    `json:"no_of_days"`
	NoOfCabs  int    `json:"no_of_cabs"`
}

const dateLayout = "2006-01-02"

func buildQuery(l pricing.Line) (pricing.Request, bool) {
	if !l.Complete() {
		return nil, false
	}
	return PriceQuery{
		CabID:     l.TargetID,
		StartDate: l.StartDate.UTC().Format(dateLayout),
		NoOfDays:  l.Span,
		NoOfCabs:  l.Occupancy,
	}, true
}

// Pricer calls the bulk pricing endpoint for cab rows.
type Pricer struct {
	Client *client.Client
}

func (p Pricer) PriceBatch(ctx context.Context, reqs []pricing.Request) ([]pricing.Result, error) {
	encoded, err := json.Marshal(reqs)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Cabs []pricing.Result `json:"cabs"`
	}
	query := url.Values{"cabs": {string(encoded)}}
	if err := p.Client.Do(ctx, http.MethodGet, "/prices", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cabs, nil
}

// NewQuoteCalculator builds a cab quote calculator wired to the backend.
func NewQuoteCalculator(c *client.Client, debounce time.Duration, onTotal func(generic.Money)) *pricing.Calculator {
	return pricing.NewCalculator(pricing.Config{
		Pricer:   Pricer{Client: c},
		Build:    buildQuery,
		Debounce: debounce,
		OnTotal:  onTotal,
	})
}
