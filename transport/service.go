package transport

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/voyagehq/quote-engine/client"
	"github.com/voyagehq/quote-engine/generic"
)

// Service bundles the cab-side resource stores with their REST thunks.
type Service struct {
	client *client.Client

	Cabs      *generic.ResourceStore[Cab]
	CabTypes  *generic.ResourceStore[CabType]
	Locations *generic.ResourceStore[Location]
	Prices    *generic.ResourceStore[Price]

	mu        sync.Mutex
	lastQuery string
}

func NewService(c *client.Client) *Service {
	return &Service{
		client:    c,
		Cabs:      generic.NewResourceStore[Cab]("cabs", nil),
		CabTypes:  generic.NewResourceStore[CabType]("cab-types", nil),
		Locations: generic.NewResourceStore[Location]("locations", nil),
		Prices:    generic.NewResourceStore[Price]("cab-prices", nil),
	}
}

// Search submits a new cab query: page resets to 1, query is remembered.
func (s *Service) Search(ctx context.Context, q string) error {
	s.mu.Lock()
	s.lastQuery = q
	s.mu.Unlock()
	return s.LoadPage(ctx, 1)
}

// LoadPage fetches one page of cabs with the last submitted query.
func (s *Service) LoadPage(ctx context.Context, page int) error {
	s.mu.Lock()
	q := s.lastQuery
	s.mu.Unlock()

	return s.Cabs.FetchList(ctx, func(ctx context.Context) (generic.Page[Cab], error) {
		query := url.Values{"page": {strconv.Itoa(page)}}
		if q != "" {
			query.Set("q", q)
		}
		return client.List[Cab](ctx, s.client, "/cabs", query)
	})
}

func (s *Service) LoadCab(ctx context.Context, id int64) error {
	return s.Cabs.FetchItem(ctx, func(ctx context.Context) (Cab, error) {
		return client.Item[Cab](ctx, s.client, fmt.Sprintf("/cabs/%d", id))
	})
}

func (s *Service) LoadCabTypes(ctx context.Context) error {
	return s.CabTypes.FetchList(ctx, func(ctx context.Context) (generic.Page[CabType], error) {
		return client.List[CabType](ctx, s.client, "/cab-types", nil)
	})
}

func (s *Service) LoadLocations(ctx context.Context) error {
	return s.Locations.FetchList(ctx, func(ctx context.Context) (generic.Page[Location], error) {
		return client.List[Location](ctx, s.client, "/locations", nil)
	})
}

func (s *Service) LoadPrices(ctx context.Context, cabID int64) error {
	return s.Prices.FetchList(ctx, func(ctx context.Context) (generic.Page[Price], error) {
		return client.List[Price](ctx, s.client, fmt.Sprintf("/cabs/%d/prices", cabID), nil)
	})
}

// PricesForCab filters the price cache by cab.
func (s *Service) PricesForCab(cabID int64) []Price {
	var out []Price
	for _, p := range s.Prices.View().Items {
		if p.CabID == cabID {
			out = append(out, p)
		}
	}
	return out
}

// NewPrice is the create-price form submission for one cab.
type NewPrice struct {
	CabTypeID  int64
	LocationID int64
	BasePrice  generic.Money
	StartDate  time.Time
	EndDate    time.Time
}

const stayTimeLayout = "2006-01-02 15:04:05"

// BuildPricePayload flattens the form values into the wire shape. Dates
// widen to whole days in UTC, same as hotel price rules.
func BuildPricePayload(p NewPrice) map[string]any {
	start := time.Date(p.StartDate.Year(), p.StartDate.Month(), p.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(p.EndDate.Year(), p.EndDate.Month(), p.EndDate.Day(), 23, 59, 59, 0, time.UTC)
	return map[string]any{
		"cab_type_id": p.CabTypeID,
		"location_id": p.LocationID,
		"base_price":  p.BasePrice,
		"start_date":  start.Format(stayTimeLayout),
		"end_date":    end.Format(stayTimeLayout),
	}
}

func (s *Service) CreatePrice(ctx context.Context, cabID int64, p NewPrice) (Price, error) {
	created, err := client.Create[Price](ctx, s.client, fmt.Sprintf("/cabs/%d/prices", cabID), BuildPricePayload(p))
	if err != nil {
		return Price{}, err
	}
	s.Prices.Dispatch(generic.Action[Price]{Kind: generic.ActionItemSuccess, Item: created})
	return created, nil
}
