package trips

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

// Service bundles the trip-desk resource stores with their REST thunks.
type Service struct {
	client *client.Client

	Trips         *generic.ResourceStore[Trip]
	Quotes        *generic.ResourceStore[Quote]
	Tenants       *generic.ResourceStore[Tenant]
	Users         *generic.ResourceStore[User]
	Notifications *generic.ResourceStore[Notification]

	mu        sync.Mutex
	lastQuery string
}

func NewService(c *client.Client) *Service {
	return &Service{
		client:        c,
		Trips:         generic.NewResourceStore[Trip]("trips", nil),
		Quotes:        generic.NewResourceStore[Quote]("quotes", nil),
		Tenants:       generic.NewResourceStore[Tenant]("tenants", nil),
		Users:         generic.NewResourceStore[User]("users", nil),
		Notifications: generic.NewResourceStore[Notification]("notifications", notificationReducer),
	}
}

// Search submits a new trip query: page resets to 1, query is remembered.
func (s *Service) Search(ctx context.Context, q string) error {
	s.mu.Lock()
	s.lastQuery = q
	s.mu.Unlock()
	return s.LoadPage(ctx, 1)
}

// LoadPage fetches one page of trips with the last submitted query.
func (s *Service) LoadPage(ctx context.Context, page int) error {
	s.mu.Lock()
	q := s.lastQuery
	s.mu.Unlock()

	return s.Trips.FetchList(ctx, func(ctx context.Context) (generic.Page[Trip], error) {
		query := url.Values{"page": {strconv.Itoa(page)}}
		if q != "" {
			query.Set("q", q)
		}
		return client.List[Trip](ctx, s.client, "/trips", query)
	})
}

func (s *Service) LoadTrip(ctx context.Context, id int64) error {
	return s.Trips.FetchItem(ctx, func(ctx context.Context) (Trip, error) {
		return client.Item[Trip](ctx, s.client, fmt.Sprintf("/trips/%d", id))
	})
}

func (s *Service) LoadTenants(ctx context.Context, page int) error {
	return s.Tenants.FetchList(ctx, func(ctx context.Context) (generic.Page[Tenant], error) {
		return client.List[Tenant](ctx, s.client, "/tenants", url.Values{"page": {strconv.Itoa(page)}})
	})
}

func (s *Service) LoadUsers(ctx context.Context, page int) error {
	return s.Users.FetchList(ctx, func(ctx context.Context) (generic.Page[User], error) {
		return client.List[User](ctx, s.client, "/users", url.Values{"page": {strconv.Itoa(page)}})
	})
}

// NewTrip is the create-trip form submission.
type NewTrip struct {
	TenantID    int64
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	NoOfAdults  int
}

func (s *Service) CreateTrip(ctx context.Context, t NewTrip) (Trip, error) {
	payload := map[string]any{
		"tenant_id":    t.TenantID,
		"destination":  t.Destination,
		"start_date":   t.StartDate.UTC().Format("2006-01-02"),
		"end_date":     t.EndDate.UTC().Format("2006-01-02"),
		"no_of_adults": t.NoOfAdults,
	}
	created, err := client.Create[Trip](ctx, s.client, "/trips", payload)
	if err != nil {
		return Trip{}, err
	}
	s.Trips.Dispatch(generic.Action[Trip]{Kind: generic.ActionItemSuccess, Item: created})
	return created, nil
}

// SaveQuote submits the aggregated given price for a trip.
func (s *Service) SaveQuote(ctx context.Context, tripID int64, given generic.Money, comments string) (Quote, error) {
	payload := map[string]any{
		"given_price": given,
		"comments":    comments,
	}
	created, err := client.Create[Quote](ctx, s.client, fmt.Sprintf("/trips/%d/quotes", tripID), payload)
	if err != nil {
		return Quote{}, err
	}
	s.Quotes.Dispatch(generic.Action[Quote]{Kind: generic.ActionItemSuccess, Item: created})
	return created, nil
}

// QuotesForTrip filters the quote cache by trip.
func (s *Service) QuotesForTrip(tripID int64) []Quote {
	var out []Quote
	for _, q := range s.Quotes.View().Items {
		if q.TripID == tripID {
			out = append(out, q)
		}
	}
	return out
}
