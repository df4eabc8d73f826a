/*
Package factory provides JSON to Go rate-plan conversion.

PURPOSE:
  Converts JSON rate-plan definitions into hotel and cab price rules.
  Operations staff define seasonal rates in JSON; the factory validates
  them and produces the rows the pricing endpoint computes from.

JSON SCHEMA (hotel):
  {
    "hotel_id": 1,
    "rates": [
      {
        "room_type_id": 2,
        "meal_plan_id": 1,
        "persons": 2,
        "base_price": "4500",
        "start_date": "2024-01-01",
        "end_date": "2024-04-30"
      }
    ]
  }

KEY FEATURES:
  - Validates date ranges and decimal prices
  - Sets sensible defaults (persons: 2)
  - Widens end dates to 23:59:59 so a rule covers every night of its
    last day, matching the client's submission normalization

USAGE:
  rules, err := factory.ParseHotelRatePlan(jsonStr)
  for _, r := range rules {
      store.CreateHotelPrice(ctx, r)
  }

SEE ALSO:
  - api/scenarios.go: Seeds demo datasets through this factory
  - hotels/service.go: The client-side normalization twin
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/hotels"
	"github.com/voyagehq/quote-engine/transport"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

type HotelRateJSON struct {
	RoomTypeID int64  `json:"room_type_id"`
	MealPlanID int64  `json:"meal_plan_id"`
	Persons    int    `json:"persons"`
	BasePrice  string `json:"base_price"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type HotelRatePlanJSON struct {
	HotelID int64           `json:"hotel_id"`
	Rates   []HotelRateJSON `json:"rates"`
}

type CabRateJSON struct {
	CabTypeID  int64  `json:"cab_type_id"`
	LocationID int64  `json:"location_id"`
	BasePrice  string `json:"base_price"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

type CabRatePlanJSON struct {
	CabID int64         `json:"cab_id"`
	Rates []CabRateJSON `json:"rates"`
}

// =============================================================================
// PARSING
// =============================================================================

const dateLayout = "2006-01-02"

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(dateLayout, end, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date %q: %w", end, err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date %s before start_date %s", end, start)
	}
	// Whole-day widening, same normalization the client submits with.
	e = e.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
	return s, e, nil
}

func parsePrice(s string) (generic.Money, error) {
	if s == "" {
		return generic.Money{}, fmt.Errorf("base_price is required")
	}
	m := generic.MustParseMoney(s)
	if m.IsZero() && s != "0" {
		return generic.Money{}, fmt.Errorf("invalid base_price %q", s)
	}
	if m.IsNegative() {
		return generic.Money{}, fmt.Errorf("base_price %q is negative", s)
	}
	return m, nil
}

// ParseHotelRatePlan converts a hotel rate-plan JSON into price rules.
func ParseHotelRatePlan(jsonStr string) ([]hotels.Price, error) {
	var plan HotelRatePlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return nil, fmt.Errorf("parse rate plan: %w", err)
	}
	if plan.HotelID == 0 {
		return nil, fmt.Errorf("hotel_id is required")
	}
	if len(plan.Rates) == 0 {
		return nil, fmt.Errorf("rate plan has no rates")
	}

	out := make([]hotels.Price, 0, len(plan.Rates))
	for i, r := range plan.Rates {
		start, end, err := parseRange(r.StartDate, r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("rate %d: %w", i, err)
		}
		price, err := parsePrice(r.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("rate %d: %w", i, err)
		}
		persons := r.Persons
		if persons == 0 {
			persons = 2
		}
		out = append(out, hotels.Price{
			HotelID:    plan.HotelID,
			RoomTypeID: r.RoomTypeID,
			MealPlanID: r.MealPlanID,
			Persons:    persons,
			BasePrice:  price,
			StartDate:  start,
			EndDate:    end,
		})
	}
	return out, nil
}

// ParseCabRatePlan converts a cab rate-plan JSON into price rules.
func ParseCabRatePlan(jsonStr string) ([]transport.Price, error) {
	var plan CabRatePlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &plan); err != nil {
		return nil, fmt.Errorf("parse rate plan: %w", err)
	}
	if plan.CabID == 0 {
		return nil, fmt.Errorf("cab_id is required")
	}
	if len(plan.Rates) == 0 {
		return nil, fmt.Errorf("rate plan has no rates")
	}

	out := make([]transport.Price, 0, len(plan.Rates))
	for i, r := range plan.Rates {
		start, end, err := parseRange(r.StartDate, r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("rate %d: %w", i, err)
		}
		price, err := parsePrice(r.BasePrice)
		if err != nil {
			return nil, fmt.Errorf("rate %d: %w", i, err)
		}
		out = append(out, transport.Price{
			CabID:      plan.CabID,
			CabTypeID:  r.CabTypeID,
			LocationID: r.LocationID,
			BasePrice:  price,
			StartDate:  start,
			EndDate:    end,
		})
	}
	return out, nil
}
