/*
Package trips covers the trip-desk resources: trips and their quotes,
tenants, users, and the notification feed.

PURPOSE:
  Trips tie the quoting side together: a trip aggregates the totals the
  hotel and cab quote calculators emit into one given quote. Tenants and
  users are plain paginated resources. Notifications are the one
  push-style resource: a background watcher polls the feed and pushes new
  entries to the front of the cache.

SEE ALSO:
  - notifications.go: Push reducer and the feed watcher
  - pricing/: Where quote totals come from
*/
package trips

import (
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// ENTITIES
// =============================================================================

type TripStatus string

const (
	TripStatusNew       TripStatus = "new"
	TripStatusQuoted    TripStatus = "quoted"
	TripStatusConverted TripStatus = "converted"
	TripStatusDropped   TripStatus = "dropped"
)

type Trip struct {
	ID          int64      `json:"id"`
	TenantID    int64      `json:"tenant_id"`
	Destination string     `json:"destination"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	NoOfAdults  int        `json:"no_of_adults"`
	Status      TripStatus `json:"status"`
}

func (t Trip) EntityID() int64 { return t.ID }

// Quote is the price quoted to a customer for a trip: the sum of every
// leg's given price, possibly annotated by staff.
type Quote struct {
	ID         int64         `json:"id"`
	TripID     int64         `json:"trip_id"`
	GivenPrice generic.Money `json:"given_price"`
	Comments   string        `json:"comments,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (q Quote) EntityID() int64 { return q.ID }

type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (t Tenant) EntityID() int64 { return t.ID }

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	TenantID int64  `json:"tenant_id,omitempty"`
}

func (u User) EntityID() int64 { return u.ID }

type Notification struct {
	ID        int64      `json:"id"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

func (n Notification) EntityID() int64 { return n.ID }

func (n Notification) Unread() bool { return n.ReadAt == nil }
