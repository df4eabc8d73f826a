/*
dto.go - Request/response shapes for the operations API

PURPOSE:
  Defines the JSON structures of the wire contract the resource stores
  consume. Entities serialize through their domain types; this file adds
  the envelopes ({data, meta, links}), the request bodies, and the
  pagination meta builder.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - listEnvelope/itemEnvelope: Response wrappers

VALIDATION:
  Request validation happens in handlers and reports 422 with
  {message, errors: {field: [messages]}}, the shape the client decodes
  into generic.APIError.

SEE ALSO:
  - handlers.go: Uses these types
  - client/: The consuming side of this contract
*/
package api

import (
	"github.com/voyagehq/quote-engine/generic"
)

// Collection page size of every list endpoint.
const perPage = 10

// =============================================================================
// ENVELOPES
// =============================================================================

type itemEnvelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data  any               `json:"data"`
	Meta  generic.PageMeta  `json:"meta"`
	Links generic.PageLinks `json:"links"`
}

// listMeta builds the pagination descriptor for one page of a collection.
func listMeta(total, page int) generic.PageMeta {
	if page < 1 {
		page = 1
	}
	last := (total + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}
	from, to := 0, 0
	if total > 0 && page <= last {
		from = (page-1)*perPage + 1
		to = page * perPage
		if to > total {
			to = total
		}
	}
	return generic.NewPageMeta(total, from, to, page, last)
}

// =============================================================================
// REQUEST BODIES
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createHotelRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Stars    int    `json:"stars"`
	TenantID int64  `json:"tenant_id"`
}

type createCabRequest struct {
	Name      string `json:"name"`
	Number    string `json:"number"`
	CabTypeID int64  `json:"cab_type_id"`
	TenantID  int64  `json:"tenant_id"`
}

type createHotelPriceRequest struct {
	RoomTypeID int64         `json:"room_type_id"`
	MealPlanID int64         `json:"meal_plan_id"`
	Persons    int           `json:"persons"`
	BasePrice  generic.Money `json:"base_price"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
}

type createCabPriceRequest struct {
	CabTypeID  int64         `json:"cab_type_id"`
	LocationID int64         `json:"location_id"`
	BasePrice  generic.Money `json:"base_price"`
	StartDate  string        `json:"start_date"`
	EndDate    string        `json:"end_date"`
}

type createTripRequest struct {
	TenantID    int64  `json:"tenant_id"`
	Destination string `json:"destination"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	NoOfAdults  int    `json:"no_of_adults"`
}

type createQuoteRequest struct {
	GivenPrice generic.Money `json:"given_price"`
	Comments   string        `json:"comments"`
}

type createTenantRequest struct {
	Name string `json:"name"`
}

type loadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
