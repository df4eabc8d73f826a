/*
Package transport mirrors the hotels package for cab services: cab and
cab-type resource stores, transport locations, per-cab price rules, and
the cab binding of the quote calculator. Cab quotes span days rather
than nights; otherwise the machinery is identical.
*/
package transport

import (
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

type Cab struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Number    string `json:"number"`
	CabTypeID int64  `json:"cab_type_id"`
	TenantID  int64  `json:"tenant_id,omitempty"`
}

func (c Cab) EntityID() int64 { return c.ID }

type CabType struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

func (c CabType) EntityID() int64 { return c.ID }

type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (l Location) EntityID() int64 { return l.ID }

// Price is one stored rate rule: the per-day price of a cab type over a
// date range and route.
type Price struct {
	ID         int64         `json:"id"`
	CabID      int64         `json:"cab_id"`
	CabTypeID  int64         `json:"cab_type_id"`
	LocationID int64         `json:"location_id,omitempty"`
	BasePrice  generic.Money `json:"base_price"`
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
}

func (p Price) EntityID() int64 { return p.ID }
