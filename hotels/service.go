/*
service.go - Hotel resource stores, thunks and selectors

PURPOSE:
  Bundles the hotel-side resource stores with the REST thunks that fill
  them. A list page calls Search on submit (resets to page 1) and
  LoadPage from the pagination control (reuses the last submitted query).

SELECTOR SURFACE:
  Store views come from generic.ResourceStore.View(). Derived selectors
  that cross resources (prices filtered by hotel) live here as plain
  methods computing eagerly over a snapshot.

SEE ALSO:
  - generic/store.go: Fetch lifecycle and fencing
  - api/handlers.go: The endpoints these thunks call
*/
package hotels

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

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	client *client.Client

	Hotels    *generic.ResourceStore[Hotel]
	RoomTypes *generic.ResourceStore[RoomType]
	MealPlans *generic.ResourceStore[MealPlan]
	Prices    *generic.ResourceStore[Price]

	mu        sync.Mutex
	lastQuery string
}

func NewService(c *client.Client) *Service {
	return &Service{
		client:    c,
		Hotels:    generic.NewResourceStore[Hotel]("hotels", nil),
		RoomTypes: generic.NewResourceStore[RoomType]("room-types", nil),
		MealPlans: generic.NewResourceStore[MealPlan]("meal-plans", nil),
		Prices:    generic.NewResourceStore[Price]("hotel-prices", nil),
	}
}

// =============================================================================
// LIST / ITEM THUNKS
// =============================================================================

// Search submits a new query: page resets to 1 and the query is
// remembered for subsequent pagination.
func (s *Service) Search(ctx context.Context, q string) error {
	s.mu.Lock()
	s.lastQuery = q
	s.mu.Unlock()
	return s.LoadPage(ctx, 1)
}

// LoadPage fetches one page of hotels with the last submitted query.
func (s *Service) LoadPage(ctx context.Context, page int) error {
	s.mu.Lock()
	q := s.lastQuery
	s.mu.Unlock()

	return s.Hotels.FetchList(ctx, func(ctx context.Context) (generic.Page[Hotel], error) {
		query := url.Values{"page": {strconv.Itoa(page)}}
		if q != "" {
			query.Set("q", q)
		}
		return client.List[Hotel](ctx, s.client, "/hotels", query)
	})
}

// LoadHotel fetches a single hotel into the cache (upsert).
func (s *Service) LoadHotel(ctx context.Context, id int64) error {
	return s.Hotels.FetchItem(ctx, func(ctx context.Context) (Hotel, error) {
		return client.Item[Hotel](ctx, s.client, fmt.Sprintf("/hotels/%d", id))
	})
}

func (s *Service) LoadRoomTypes(ctx context.Context) error {
	return s.RoomTypes.FetchList(ctx, func(ctx context.Context) (generic.Page[RoomType], error) {
		return client.List[RoomType](ctx, s.client, "/room-types", nil)
	})
}

func (s *Service) LoadMealPlans(ctx context.Context) error {
	return s.MealPlans.FetchList(ctx, func(ctx context.Context) (generic.Page[MealPlan], error) {
		return client.List[MealPlan](ctx, s.client, "/meal-plans", nil)
	})
}

// LoadPrices fetches the price rules of one hotel into the price cache.
func (s *Service) LoadPrices(ctx context.Context, hotelID int64) error {
	return s.Prices.FetchList(ctx, func(ctx context.Context) (generic.Page[Price], error) {
		return client.List[Price](ctx, s.client, fmt.Sprintf("/hotels/%d/prices", hotelID), nil)
	})
}

// PricesForHotel filters the price cache by hotel. Derived selector;
// computed eagerly over the current snapshot.
func (s *Service) PricesForHotel(hotelID int64) []Price {
	var out []Price
	for _, p := range s.Prices.View().Items {
		if p.HotelID == hotelID {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// PRICE CREATION - submission payload
// =============================================================================

// NewPrice is the create-price form submission for one hotel.
type NewPrice struct {
	RoomTypeID int64
	MealPlanID int64
	Persons    int
	BasePrice  generic.Money
	StartDate  time.Time
	EndDate    time.Time
}

type newPricePayload struct {
	RoomTypeID int64         `json:"room_type_id"`
	MealPlanID int64         `json:"meal_plan_id"`
	Persons    int           `json:"persons"`
	BasePrice  generic.Money `json:"base_price"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
}

const stayTimeLayout = "2006-01-02 15:04:05"

// NormalizeStayRange widens a date range to whole days in UTC: the start
// day begins at 00:00:00 and the end day runs through 23:59:59, so a rule
// covers every night of its last day.
func NormalizeStayRange(start, end time.Time) (string, string) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	return s.Format(stayTimeLayout), e.Format(stayTimeLayout)
}

// BuildPricePayload flattens the form values into the wire shape.
func BuildPricePayload(p NewPrice) map[string]any {
	start, end := NormalizeStayRange(p.StartDate, p.EndDate)
	return map[string]any{
		"room_type_id": p.RoomTypeID,
		"meal_plan_id": p.MealPlanID,
		"persons":      p.Persons,
		"base_price":   p.BasePrice,
		"start_date":   start,
		"end_date":     end,
	}
}

// CreatePrice submits a new price rule and upserts the stored copy into
// the price cache.
func (s *Service) CreatePrice(ctx context.Context, hotelID int64, p NewPrice) (Price, error) {
	created, err := client.Create[Price](ctx, s.client, fmt.Sprintf("/hotels/%d/prices", hotelID), BuildPricePayload(p))
	if err != nil {
		return Price{}, err
	}
	s.Prices.Dispatch(generic.Action[Price]{Kind: generic.ActionItemSuccess, Item: created})
	return created, nil
}
