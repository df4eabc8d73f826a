/*
Package hotels provides the hotel resource stores and quote binding.

PURPOSE:
  Domain package over the generic caching engine for everything
  hotel-shaped: hotels themselves, room types, meal plans, and the price
  rules attached to a hotel. Also binds the pricing calculator to the
  hotel side of the bulk pricing endpoint.

RESOURCES:
  hotels:       GET /hotels, GET /hotels/{id}
  room types:   GET /room-types
  meal plans:   GET /meal-plans
  hotel prices: GET /hotels/{id}/prices, POST /hotels/{id}/prices

SEE ALSO:
  - service.go: Stores, thunks and derived selectors
  - quote.go: Hotel quote calculator binding
  - transport/: The cab twin of this package
*/
package hotels

import (
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// ENTITIES
// =============================================================================

type Hotel struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Stars    int    `json:"stars"`
	TenantID int64  `json:"tenant_id,omitempty"`
}

func (h Hotel) EntityID() int64 { return h.ID }

type RoomType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r RoomType) EntityID() int64 { return r.ID }

type MealPlan struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (m MealPlan) EntityID() int64 { return m.ID }

// Price is one stored rate rule: the per-night base price for a hotel,
// room type and meal plan combination over a date range.
type Price struct {
	ID         int64         `json:"id"`
	HotelID    int64         `json:"hotel_id"`
	RoomTypeID int64         `json:"room_type_id"`
	MealPlanID int64         `json:"meal_plan_id"`
	BasePrice  generic.Money `json:"base_price"`
	Persons    int           `json:"persons"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
}

func (p Price) EntityID() int64 { return p.ID }
