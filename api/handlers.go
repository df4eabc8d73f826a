/*
handlers.go - HTTP handlers for the operations API

PURPOSE:
  Exposes the reference backend via REST. Handles HTTP request/response,
  JSON serialization, and delegates persistence to the sqlite store.

ENDPOINTS:
  Auth:
    POST   /api/login                    Exchange credentials for a token

  Inventory:
    GET    /api/hotels?q=&page=          Paginated hotel list
    POST   /api/hotels                   Create hotel
    GET    /api/hotels/{id}              Single hotel
    GET    /api/hotels/{id}/prices       Price rules of a hotel
    POST   /api/hotels/{id}/prices       Create price rule
    (cabs mirror hotels; room-types, meal-plans, cab-types, locations
     are small unpaginated collections)

  Trip desk:
    GET/POST /api/trips, GET /api/trips/{id}
    GET/POST /api/trips/{id}/quotes
    GET    /api/tenants, POST /api/tenants, GET /api/users

  Feed:
    GET    /api/notifications?page=      Newest-first feed
    POST   /api/notifications/{id}/read  Mark read

  Pricing:
    GET    /api/prices?hotels=[..]&cabs=[..]   Bulk quote pricing

ERROR HANDLING:
  - 401: Missing/unknown bearer token
  - 404: Resource not found
  - 422: Validation errors as {message, errors: {field: [messages]}}
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - pricing.go: Bulk price computation
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/voyagehq/quote-engine/hotels"
	"github.com/voyagehq/quote-engine/store/sqlite"
	"github.com/voyagehq/quote-engine/transport"
	"github.com/voyagehq/quote-engine/trips"
)

const stayTimeLayout = "2006-01-02 15:04:05"
const dateLayout = "2006-01-02"

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	currentScenario string
}

// NewHandler creates a new handler backed by the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"message": message})
}

func writeValidation(w http.ResponseWriter, message string, fields map[string][]string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"message": message,
		"errors":  fields,
	})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Not found.")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error.")
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed JSON body.")
		return false
	}
	return true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// parseStayTime accepts the normalized "2006-01-02 15:04:05" form and
// plain dates.
func parseStayTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(stayTimeLayout, s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.Email == "" {
		fields["email"] = append(fields["email"], "The email field is required.")
	}
	if req.Password == "" {
		fields["password"] = append(fields["password"], "The password field is required.")
	}
	if len(fields) > 0 {
		writeValidation(w, "The given data was invalid.", fields)
		return
	}

	token, user, err := h.Store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "These credentials do not match our records.")
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Data: map[string]any{"token": token, "user": user}})
}

// RequireAuth rejects requests without a known bearer token.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if _, err := h.Store.UserByToken(r.Context(), token); err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HOTELS
// =============================================================================

func (h *Handler) ListHotels(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListHotels(r.Context(), r.URL.Query().Get("q"), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []hotels.Hotel{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	hotel, err := h.Store.GetHotel(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Data: hotel})
}

func (h *Handler) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req createHotelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidation(w, "The given data was invalid.", map[string][]string{
			"name": {"The name field is required."},
		})
		return
	}
	hotel, err := h.Store.CreateHotel(r.Context(), hotels.Hotel{
		Name: req.Name, Location: req.Location, Stars: req.Stars, TenantID: req.TenantID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: hotel})
}

func (h *Handler) ListHotelPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	prices, err := h.Store.ListHotelPrices(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if prices == nil {
		prices = []hotels.Price{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: prices, Meta: listMeta(len(prices), 1)})
}

func (h *Handler) CreateHotelPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if _, err := h.Store.GetHotel(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	var req createHotelPriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.BasePrice.IsZero() || req.BasePrice.IsNegative() {
		fields["base_price"] = append(fields["base_price"], "The base price must be greater than zero.")
	}
	start, err := parseStayTime(req.StartDate)
	if err != nil {
		fields["start_date"] = append(fields["start_date"], "The start date is not a valid date.")
	}
	end, err := parseStayTime(req.EndDate)
	if err != nil {
		fields["end_date"] = append(fields["end_date"], "The end date is not a valid date.")
	} else if err == nil && len(fields) == 0 && end.Before(start) {
		fields["end_date"] = append(fields["end_date"], "The end date must be after the start date.")
	}
	if len(fields) > 0 {
		writeValidation(w, "The given data was invalid.", fields)
		return
	}

	persons := req.Persons
	if persons == 0 {
		persons = 2
	}

	existing, err := h.Store.ListHotelPrices(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	for _, rule := range existing {
		if rule.RoomTypeID == req.RoomTypeID && rule.MealPlanID == req.MealPlanID &&
			rule.Persons == persons && rangesOverlap(start, end, rule.StartDate, rule.EndDate) {
			writeError(w, http.StatusConflict, "A price rule for this room type and period already exists.")
			return
		}
	}

	price, err := h.Store.CreateHotelPrice(r.Context(), hotels.Price{
		HotelID:    id,
		RoomTypeID: req.RoomTypeID,
		MealPlanID: req.MealPlanID,
		Persons:    persons,
		BasePrice:  req.BasePrice,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: price})
}

func (h *Handler) ListRoomTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListRoomTypes(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []hotels.RoomType{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(len(items), 1)})
}

func (h *Handler) ListMealPlans(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListMealPlans(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []hotels.MealPlan{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(len(items), 1)})
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (h *Handler) ListCabs(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListCabs(r.Context(), r.URL.Query().Get("q"), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []transport.Cab{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) GetCab(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	cab, err := h.Store.GetCab(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Data: cab})
}

func (h *Handler) CreateCab(w http.ResponseWriter, r *http.Request) {
	var req createCabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidation(w, "The given data was invalid.", map[string][]string{
			"name": {"The name field is required."},
		})
		return
	}
	cab, err := h.Store.CreateCab(r.Context(), transport.Cab{
		Name: req.Name, Number: req.Number, CabTypeID: req.CabTypeID, TenantID: req.TenantID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: cab})
}

func (h *Handler) ListCabPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	prices, err := h.Store.ListCabPrices(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if prices == nil {
		prices = []transport.Price{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: prices, Meta: listMeta(len(prices), 1)})
}

func (h *Handler) CreateCabPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if _, err := h.Store.GetCab(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	var req createCabPriceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.BasePrice.IsZero() || req.BasePrice.IsNegative() {
		fields["base_price"] = append(fields["base_price"], "The base price must be greater than zero.")
	}
	start, err := parseStayTime(req.StartDate)
	if err != nil {
		fields["start_date"] = append(fields["start_date"], "The start date is not a valid date.")
	}
	end, err := parseStayTime(req.EndDate)
	if err != nil {
		fields["end_date"] = append(fields["end_date"], "The end date is not a valid date.")
	} else if len(fields) == 0 && end.Before(start) {
		fields["end_date"] = append(fields["end_date"], "The end date must be after the start date.")
	}
	if len(fields) > 0 {
		writeValidation(w, "The given data was invalid.", fields)
		return
	}

	existing, err := h.Store.ListCabPrices(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	for _, rule := range existing {
		if rule.CabTypeID == req.CabTypeID && rule.LocationID == req.LocationID &&
			rangesOverlap(start, end, rule.StartDate, rule.EndDate) {
			writeError(w, http.StatusConflict, "A price rule for this cab type and period already exists.")
			return
		}
	}

	price, err := h.Store.CreateCabPrice(r.Context(), transport.Price{
		CabID:      id,
		CabTypeID:  req.CabTypeID,
		LocationID: req.LocationID,
		BasePrice:  req.BasePrice,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: price})
}

func (h *Handler) ListCabTypes(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListCabTypes(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []transport.CabType{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(len(items), 1)})
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListLocations(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []transport.Location{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(len(items), 1)})
}

// =============================================================================
// TRIPS & QUOTES
// =============================================================================

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListTrips(r.Context(), r.URL.Query().Get("q"), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []trips.Trip{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	trip, err := h.Store.GetTrip(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Data: trip})
}

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string][]string{}
	if req.Destination == "" {
		fields["destination"] = append(fields["destination"], "The destination field is required.")
	}
	start, err := parseStayTime(req.StartDate)
	if err != nil {
		fields["start_date"] = append(fields["start_date"], "The start date is not a valid date.")
	}
	end, err := parseStayTime(req.EndDate)
	if err != nil {
		fields["end_date"] = append(fields["end_date"], "The end date is not a valid date.")
	}
	if len(fields) > 0 {
		writeValidation(w, "The given data was invalid.", fields)
		return
	}

	adults := req.NoOfAdults
	if adults == 0 {
		adults = 1
	}
	trip, err := h.Store.CreateTrip(r.Context(), trips.Trip{
		TenantID:    req.TenantID,
		Destination: req.Destination,
		StartDate:   start,
		EndDate:     end,
		NoOfAdults:  adults,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: trip})
}

func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	quotes, err := h.Store.ListQuotes(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if quotes == nil {
		quotes = []trips.Quote{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: quotes, Meta: listMeta(len(quotes), 1)})
}

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	if _, err := h.Store.GetTrip(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	var req createQuoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.GivenPrice.IsNegative() {
		writeValidation(w, "The given data was invalid.", map[string][]string{
			"given_price": {"The given price may not be negative."},
		})
		return
	}
	quote, err := h.Store.CreateQuote(r.Context(), trips.Quote{
		TripID:     id,
		GivenPrice: req.GivenPrice,
		Comments:   req.Comments,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: quote})
}

// =============================================================================
// TENANTS, USERS, NOTIFICATIONS
// =============================================================================

func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListTenants(r.Context(), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []trips.Tenant{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeValidation(w, "The given data was invalid.", map[string][]string{
			"name": {"The name field is required."},
		})
		return
	}
	tenant, err := h.Store.CreateTenant(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemEnvelope{Data: tenant})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListUsers(r.Context(), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []trips.User{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	page := pageParam(r)
	items, total, err := h.Store.ListNotifications(r.Context(), page, perPage)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if items == nil {
		items = []trips.Notification{}
	}
	writeJSON(w, http.StatusOK, listEnvelope{Data: items, Meta: listMeta(total, page)})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id.")
		return
	}
	n, err := h.Store.MarkNotificationRead(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemEnvelope{Data: n})
}
