/*
scenarios.go - Loadable demo datasets

PURPOSE:
  Ships ready-made datasets for demos and local development. Loading a
  scenario resets the database and seeds it through the same store and
  factory paths production data takes, so pricing and pagination behave
  exactly as they would on real data.

AVAILABLE SCENARIOS:
  - goa-season: Two beach hotels with seasonal rates, one cab fleet,
    an open trip ready to quote
  - empty: Just the tenant and the admin login

LOGIN:
  Every scenario creates admin@voyagehq.test / secret.

SEE ALSO:
  - factory/rateplan.go: Rate-plan parsing used by the seeders
  - server.go: Scenario routes stay unauthenticated
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/voyagehq/quote-engine/factory"
	"github.com/voyagehq/quote-engine/hotels"
	"github.com/voyagehq/quote-engine/transport"
	"github.com/voyagehq/quote-engine/trips"
)

// =============================================================================
// SCENARIO CATALOG
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "goa-season",
		Name:        "Goa season",
		Description: "Two beach hotels with seasonal rates, a cab fleet, and an open trip ready to quote.",
	},
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "A blank tenant with just the admin login.",
	},
}

var scenarioLoaders = map[string]func(context.Context, *Handler) error{
	"goa-season": loadGoaSeason,
	"empty":      loadEmpty,
}

// Seed loads a scenario by id, for startup seeding.
func (h *Handler) Seed(ctx context.Context, scenarioID string) error {
	loader, ok := scenarioLoaders[scenarioID]
	if !ok {
		return fmt.Errorf("unknown scenario %q", scenarioID)
	}
	if err := loader(ctx, h); err != nil {
		return err
	}
	h.currentScenario = scenarioID
	return nil
}

// =============================================================================
// HANDLERS
// =============================================================================

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, itemEnvelope{Data: map[string]any{
		"scenarios": scenarios,
		"current":   h.currentScenario,
	}})
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req loadScenarioRequest
	if !decodeBody(w, r, &req) {
		return
	}
	loader, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeValidation(w, "The given data was invalid.", map[string][]string{
			"scenario_id": {fmt.Sprintf("Unknown scenario %q.", req.ScenarioID)},
		})
		return
	}
	if err := loader(r.Context(), h); err != nil {
		writeError(w, http.StatusInternalServerError, "Scenario load failed.")
		return
	}
	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, itemEnvelope{Data: map[string]any{"scenario_id": req.ScenarioID}})
}

func (h *Handler) ResetScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Reset failed.")
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, itemEnvelope{Data: map[string]any{"reset": true}})
}

// =============================================================================
// SEEDERS
// =============================================================================

func seedBase(ctx context.Context, h *Handler) (trips.Tenant, error) {
	if err := h.Store.Reset(ctx); err != nil {
		return trips.Tenant{}, err
	}
	tenant, err := h.Store.CreateTenant(ctx, "VoyageHQ Demo")
	if err != nil {
		return trips.Tenant{}, err
	}
	if _, err := h.Store.CreateUser(ctx, "Admin", "admin@voyagehq.test", "secret", tenant.ID); err != nil {
		return trips.Tenant{}, err
	}
	return tenant, nil
}

func loadEmpty(ctx context.Context, h *Handler) error {
	_, err := seedBase(ctx, h)
	return err
}

func loadGoaSeason(ctx context.Context, h *Handler) error {
	tenant, err := seedBase(ctx, h)
	if err != nil {
		return err
	}

	// Reference data.
	double, err := h.Store.CreateRoomType(ctx, "Double", "Standard double room")
	if err != nil {
		return err
	}
	suite, err := h.Store.CreateRoomType(ctx, "Suite", "Sea-facing suite")
	if err != nil {
		return err
	}
	cp, err := h.Store.CreateMealPlan(ctx, "CP", "Continental plan, breakfast only")
	if err != nil {
		return err
	}
	mapPlan, err := h.Store.CreateMealPlan(ctx, "MAP", "Modified American plan, breakfast and dinner")
	if err != nil {
		return err
	}
	sedan, err := h.Store.CreateCabType(ctx, "Sedan", 4)
	if err != nil {
		return err
	}
	if _, err := h.Store.CreateCabType(ctx, "Tempo Traveller", 12); err != nil {
		return err
	}
	goa, err := h.Store.CreateLocation(ctx, "Goa")
	if err != nil {
		return err
	}

	// Hotels with seasonal rate plans.
	palms, err := h.Store.CreateHotel(ctx, hotels.Hotel{
		Name: "Palm Grove Resort", Location: "Calangute", Stars: 4, TenantID: tenant.ID,
	})
	if err != nil {
		return err
	}
	dunes, err := h.Store.CreateHotel(ctx, hotels.Hotel{
		Name: "Silver Dunes", Location: "Palolem", Stars: 3, TenantID: tenant.ID,
	})
	if err != nil {
		return err
	}

	palmsPlan := fmt.Sprintf(`{
		"hotel_id": %d,
		"rates": [
			{"room_type_id": %d, "meal_plan_id": %d, "persons": 2,
			 "base_price": "4500", "start_date": "2026-10-01", "end_date": "2026-12-19"},
			{"room_type_id": %d, "meal_plan_id": %d, "persons": 2,
			 "base_price": "7200", "start_date": "2026-12-20", "end_date": "2027-01-10"},
			{"room_type_id": %d, "meal_plan_id": %d, "persons": 3,
			 "base_price": "9800", "start_date": "2026-10-01", "end_date": "2027-01-10"}
		]
	}`, palms.ID, double.ID, cp.ID, double.ID, cp.ID, suite.ID, mapPlan.ID)

	dunesPlan := fmt.Sprintf(`{
		"hotel_id": %d,
		"rates": [
			{"room_type_id": %d, "meal_plan_id": %d, "persons": 2,
			 "base_price": "3200", "start_date": "2026-10-01", "end_date": "2027-01-31"}
		]
	}`, dunes.ID, double.ID, cp.ID)

	for _, plan := range []string{palmsPlan, dunesPlan} {
		rules, err := factory.ParseHotelRatePlan(plan)
		if err != nil {
			return err
		}
		for _, rule := range rules {
			if _, err := h.Store.CreateHotelPrice(ctx, rule); err != nil {
				return err
			}
		}
	}

	// Cab fleet.
	cab, err := h.Store.CreateCab(ctx, transport.Cab{
		Name: "Goa Airport Sedan", Number: "GA-01-7721", CabTypeID: sedan.ID, TenantID: tenant.ID,
	})
	if err != nil {
		return err
	}
	cabPlan := fmt.Sprintf(`{
		"cab_id": %d,
		"rates": [
			{"cab_type_id": %d, "location_id": %d,
			 "base_price": "1500", "start_date": "2026-10-01", "end_date": "2027-01-31"}
		]
	}`, cab.ID, sedan.ID, goa.ID)
	cabRules, err := factory.ParseCabRatePlan(cabPlan)
	if err != nil {
		return err
	}
	for _, rule := range cabRules {
		if _, err := h.Store.CreateCabPrice(ctx, rule); err != nil {
			return err
		}
	}

	// An open trip waiting for its first quote.
	trip, err := h.Store.CreateTrip(ctx, trips.Trip{
		TenantID:    tenant.ID,
		Destination: "Goa",
		StartDate:   mustDate("2026-12-22"),
		EndDate:     mustDate("2026-12-26"),
		NoOfAdults:  2,
	})
	if err != nil {
		return err
	}

	if _, err := h.Store.CreateNotification(ctx, fmt.Sprintf("New trip enquiry #%d for Goa.", trip.ID)); err != nil {
		return err
	}
	if _, err := h.Store.CreateNotification(ctx, "Season rates for Palm Grove Resort are live."); err != nil {
		return err
	}
	return nil
}

func mustDate(s string) time.Time {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}
