/*
Package sqlite provides the SQLite-backed persistence for the reference
operations backend.

PURPOSE:
  Implements the storage the API layer needs: paginated resource listing
  with total counts, single-record lookup, creation, rate-rule queries
  for price computation, and the token table behind bearer auth.

KEY TABLES:
  tenants, users, tokens:   Accounts and bearer sessions
  hotels, room_types, meal_plans, hotel_prices:  Hotel inventory + rates
  cabs, cab_types, locations, cab_prices:        Transport inventory + rates
  trips, quotes:            Trip desk and given quotes
  notifications:            The push feed

CONVENTIONS:
  - Dates/times stored as UTC text ("2006-01-02 15:04:05")
  - Money stored as decimal text, never floats
  - LIMIT/OFFSET pagination; every list returns its total count so the
    API can build {total, from, to, current_page, last_page} meta

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block and the single writer is serialized by the driver.

USAGE:
  store, err := sqlite.New(":memory:")
  ...
  defer store.Close()

SEE ALSO:
  - api/handlers.go: The only consumer
  - factory/: Rate-plan JSON parsed into the price tables
*/
package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/hotels"
	"github.com/voyagehq/quote-engine/transport"
	"github.com/voyagehq/quote-engine/trips"
)

const timeLayout = "2006-01-02 15:04:05"

// ErrNotFound is returned for missing records.
var ErrNotFound = errors.New("record not found")

// Store implements the backend's persistence on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and migrates) the database. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases intact across the pool;
	// SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tenants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		tenant_id INTEGER
	);
	CREATE TABLE IF NOT EXISTS tokens (
		token TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS hotels (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		stars INTEGER NOT NULL DEFAULT 0,
		tenant_id INTEGER
	);
	CREATE TABLE IF NOT EXISTS room_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS meal_plans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE IF NOT EXISTS hotel_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hotel_id INTEGER NOT NULL REFERENCES hotels(id),
		room_type_id INTEGER NOT NULL DEFAULT 0,
		meal_plan_id INTEGER NOT NULL DEFAULT 0,
		persons INTEGER NOT NULL DEFAULT 2,
		base_price TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hotel_prices_hotel ON hotel_prices(hotel_id, start_date, end_date);
	CREATE TABLE IF NOT EXISTS cab_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 4
	);
	CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cabs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		number TEXT NOT NULL DEFAULT '',
		cab_type_id INTEGER NOT NULL DEFAULT 0,
		tenant_id INTEGER
	);
	CREATE TABLE IF NOT EXISTS cab_prices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		cab_id INTEGER NOT NULL REFERENCES cabs(id),
		cab_type_id INTEGER NOT NULL DEFAULT 0,
		location_id INTEGER NOT NULL DEFAULT 0,
		base_price TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cab_prices_cab ON cab_prices(cab_id, start_date, end_date);
	CREATE TABLE IF NOT EXISTS trips (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id INTEGER NOT NULL DEFAULT 0,
		destination TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		no_of_adults INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'new'
	);
	CREATE TABLE IF NOT EXISTS quotes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		trip_id INTEGER NOT NULL REFERENCES trips(id),
		given_price TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT NOT NULL,
		created_at TEXT NOT NULL,
		read_at TEXT
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Reset clears every table. Dev/scenario use only.
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"tokens", "users", "tenants",
		"hotel_prices", "hotels", "room_types", "meal_plans",
		"cab_prices", "cabs", "cab_types", "locations",
		"quotes", "trips", "notifications",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseTime(s string) time.Time {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func likePattern(q string) string {
	return "%" + strings.ReplaceAll(q, "%", "") + "%"
}

func offsetOf(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// =============================================================================
// AUTH
// =============================================================================

// CreateUser inserts a user. Passwords are demo-grade plain text; this
// backend exists to exercise the client, not to guard anything.
func (s *Store) CreateUser(ctx context.Context, name, email, password string, tenantID int64) (trips.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (name, email, password, tenant_id) VALUES (?, ?, ?, ?)",
		name, email, password, tenantID)
	if err != nil {
		return trips.User{}, fmt.Errorf("create user: %w", err)
	}
	id, _ := res.LastInsertId()
	return trips.User{ID: id, Name: name, Email: email, TenantID: tenantID}, nil
}

// Authenticate checks credentials and mints a bearer token.
func (s *Store) Authenticate(ctx context.Context, email, password string) (string, trips.User, error) {
	var u trips.User
	var stored string
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, COALESCE(tenant_id, 0) FROM users WHERE email = ?", email)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &stored, &u.TenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", trips.User{}, ErrNotFound
		}
		return "", trips.User{}, err
	}
	if stored != password {
		return "", trips.User{}, ErrNotFound
	}

	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", trips.User{}, err
	}
	token := hex.EncodeToString(buf)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tokens (token, user_id, created_at) VALUES (?, ?, ?)",
		token, u.ID, formatTime(time.Now()))
	if err != nil {
		return "", trips.User{}, fmt.Errorf("store token: %w", err)
	}
	return token, u, nil
}

// UserByToken resolves a bearer token.
func (s *Store) UserByToken(ctx context.Context, token string) (trips.User, error) {
	var u trips.User
	row := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.name, u.email, COALESCE(u.tenant_id, 0)
		FROM tokens t JOIN users u ON u.id = t.user_id
		WHERE t.token = ?`, token)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.TenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trips.User{}, ErrNotFound
		}
		return trips.User{}, err
	}
	return u, nil
}

// =============================================================================
// TENANTS & USERS
// =============================================================================

func (s *Store) CreateTenant(ctx context.Context, name string) (trips.Tenant, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO tenants (name) VALUES (?)", name)
	if err != nil {
		return trips.Tenant{}, fmt.Errorf("create tenant: %w", err)
	}
	id, _ := res.LastInsertId()
	return trips.Tenant{ID: id, Name: name}, nil
}

func (s *Store) ListTenants(ctx context.Context, page, perPage int) ([]trips.Tenant, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tenants").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM tenants ORDER BY id LIMIT ? OFFSET ?",
		perPage, offsetOf(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []trips.Tenant
	for rows.Next() {
		var t trips.Tenant
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (s *Store) ListUsers(ctx context.Context, page, perPage int) ([]trips.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, COALESCE(tenant_id, 0) FROM users ORDER BY id LIMIT ? OFFSET ?",
		perPage, offsetOf(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []trips.User
	for rows.Next() {
		var u trips.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.TenantID); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// =============================================================================
// HOTELS
// =============================================================================

func (s *Store) CreateHotel(ctx context.Context, h hotels.Hotel) (hotels.Hotel, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO hotels (name, location, stars, tenant_id) VALUES (?, ?, ?, ?)",
		h.Name, h.Location, h.Stars, h.TenantID)
	if err != nil {
		return hotels.Hotel{}, fmt.Errorf("create hotel: %w", err)
	}
	h.ID, _ = res.LastInsertId()
	return h, nil
}

func (s *Store) ListHotels(ctx context.Context, q string, page, perPage int) ([]hotels.Hotel, int, error) {
	where, args := "", []any{}
	if q != "" {
		where = " WHERE name LIKE ? OR location LIKE ?"
		args = append(args, likePattern(q), likePattern(q))
	}
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM hotels"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, perPage, offsetOf(page, perPage))
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, location, stars, COALESCE(tenant_id, 0) FROM hotels"+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []hotels.Hotel
	for rows.Next() {
		var h hotels.Hotel
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Stars, &h.TenantID); err != nil {
			return nil, 0, err
		}
		out = append(out, h)
	}
	return out, total, rows.Err()
}

func (s *Store) GetHotel(ctx context.Context, id int64) (hotels.Hotel, error) {
	var h hotels.Hotel
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, location, stars, COALESCE(tenant_id, 0) FROM hotels WHERE id = ?", id)
	if err := row.Scan(&h.ID, &h.Name, &h.Location, &h.Stars, &h.TenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return hotels.Hotel{}, ErrNotFound
		}
		return hotels.Hotel{}, err
	}
	return h, nil
}

func (s *Store) CreateRoomType(ctx context.Context, name, description string) (hotels.RoomType, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO room_types (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		return hotels.RoomType{}, err
	}
	id, _ := res.LastInsertId()
	return hotels.RoomType{ID: id, Name: name, Description: description}, nil
}

func (s *Store) ListRoomTypes(ctx context.Context) ([]hotels.RoomType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM room_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []hotels.RoomType
	for rows.Next() {
		var r hotels.RoomType
		if err := rows.Scan(&r.ID, &r.Name, &r.Description); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) CreateMealPlan(ctx context.Context, name, description string) (hotels.MealPlan, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO meal_plans (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		return hotels.MealPlan{}, err
	}
	id, _ := res.LastInsertId()
	return hotels.MealPlan{ID: id, Name: name, Description: description}, nil
}

func (s *Store) ListMealPlans(ctx context.Context) ([]hotels.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, description FROM meal_plans ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []hotels.MealPlan
	for rows.Next() {
		var m hotels.MealPlan
		if err := rows.Scan(&m.ID, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateHotelPrice(ctx context.Context, p hotels.Price) (hotels.Price, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO hotel_prices (hotel_id, room_type_id, meal_plan_id, persons, base_price, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.HotelID, p.RoomTypeID, p.MealPlanID, p.Persons, p.BasePrice.Value.String(),
		formatTime(p.StartDate), formatTime(p.EndDate))
	if err != nil {
		return hotels.Price{}, fmt.Errorf("create hotel price: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return p, nil
}

func (s *Store) ListHotelPrices(ctx context.Context, hotelID int64) ([]hotels.Price, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hotel_id, room_type_id, meal_plan_id, persons, base_price, start_date, end_date
		FROM hotel_prices WHERE hotel_id = ? ORDER BY id`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []hotels.Price
	for rows.Next() {
		var p hotels.Price
		var price, start, end string
		if err := rows.Scan(&p.ID, &p.HotelID, &p.RoomTypeID, &p.MealPlanID, &p.Persons, &price, &start, &end); err != nil {
			return nil, err
		}
		p.BasePrice = generic.MustParseMoney(price)
		p.StartDate = parseTime(start)
		p.EndDate = parseTime(end)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (s *Store) CreateCabType(ctx context.Context, name string, capacity int) (transport.CabType, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO cab_types (name, capacity) VALUES (?, ?)", name, capacity)
	if err != nil {
		return transport.CabType{}, err
	}
	id, _ := res.LastInsertId()
	return transport.CabType{ID: id, Name: name, Capacity: capacity}, nil
}

func (s *Store) ListCabTypes(ctx context.Context) ([]transport.CabType, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, capacity FROM cab_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []transport.CabType
	for rows.Next() {
		var t transport.CabType
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) CreateLocation(ctx context.Context, name string) (transport.Location, error) {
	res, err := s.db.ExecContext(ctx, "INSERT INTO locations (name) VALUES (?)", name)
	if err != nil {
		return transport.Location{}, err
	}
	id, _ := res.LastInsertId()
	return transport.Location{ID: id, Name: name}, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]transport.Location, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM locations ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []transport.Location
	for rows.Next() {
		var l transport.Location
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) CreateCab(ctx context.Context, c transport.Cab) (transport.Cab, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO cabs (name, number, cab_type_id, tenant_id) VALUES (?, ?, ?, ?)",
		c.Name, c.Number, c.CabTypeID, c.TenantID)
	if err != nil {
		return transport.Cab{}, fmt.Errorf("create cab: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return c, nil
}

func (s *Store) ListCabs(ctx context.Context, q string, page, perPage int) ([]transport.Cab, int, error) {
	where, args := "", []any{}
	if q != "" {
		where = " WHERE name LIKE ? OR number LIKE ?"
		args = append(args, likePattern(q), likePattern(q))
	}
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cabs"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, perPage, offsetOf(page, perPage))
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, number, cab_type_id, COALESCE(tenant_id, 0) FROM cabs"+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []transport.Cab
	for rows.Next() {
		var c transport.Cab
		if err := rows.Scan(&c.ID, &c.Name, &c.Number, &c.CabTypeID, &c.TenantID); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *Store) GetCab(ctx context.Context, id int64) (transport.Cab, error) {
	var c transport.Cab
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, number, cab_type_id, COALESCE(tenant_id, 0) FROM cabs WHERE id = ?", id)
	if err := row.Scan(&c.ID, &c.Name, &c.Number, &c.CabTypeID, &c.TenantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transport.Cab{}, ErrNotFound
		}
		return transport.Cab{}, err
	}
	return c, nil
}

func (s *Store) CreateCabPrice(ctx context.Context, p transport.Price) (transport.Price, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO cab_prices (cab_id, cab_type_id, location_id, base_price, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.CabID, p.CabTypeID, p.LocationID, p.BasePrice.Value.String(),
		formatTime(p.StartDate), formatTime(p.EndDate))
	if err != nil {
		return transport.Price{}, fmt.Errorf("create cab price: %w", err)
	}
	p.ID, _ = res.LastInsertId()
	return p, nil
}

func (s *Store) ListCabPrices(ctx context.Context, cabID int64) ([]transport.Price, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cab_id, cab_type_id, location_id, base_price, start_date, end_date
		FROM cab_prices WHERE cab_id = ? ORDER BY id`, cabID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []transport.Price
	for rows.Next() {
		var p transport.Price
		var price, start, end string
		if err := rows.Scan(&p.ID, &p.CabID, &p.CabTypeID, &p.LocationID, &price, &start, &end); err != nil {
			return nil, err
		}
		p.BasePrice = generic.MustParseMoney(price)
		p.StartDate = parseTime(start)
		p.EndDate = parseTime(end)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// TRIPS & QUOTES
// =============================================================================

func (s *Store) CreateTrip(ctx context.Context, t trips.Trip) (trips.Trip, error) {
	if t.Status == "" {
		t.Status = trips.TripStatusNew
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO trips (tenant_id, destination, start_date, end_date, no_of_adults, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.TenantID, t.Destination, formatTime(t.StartDate), formatTime(t.EndDate), t.NoOfAdults, string(t.Status))
	if err != nil {
		return trips.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	t.ID, _ = res.LastInsertId()
	return t, nil
}

func (s *Store) ListTrips(ctx context.Context, q string, page, perPage int) ([]trips.Trip, int, error) {
	where, args := "", []any{}
	if q != "" {
		where = " WHERE destination LIKE ?"
		args = append(args, likePattern(q))
	}
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM trips"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args = append(args, perPage, offsetOf(page, perPage))
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, destination, start_date, end_date, no_of_adults, status
		FROM trips`+where+" ORDER BY id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []trips.Trip
	for rows.Next() {
		var t trips.Trip
		var start, end, status string
		if err := rows.Scan(&t.ID, &t.TenantID, &t.Destination, &start, &end, &t.NoOfAdults, &status); err != nil {
			return nil, 0, err
		}
		t.StartDate = parseTime(start)
		t.EndDate = parseTime(end)
		t.Status = trips.TripStatus(status)
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (s *Store) GetTrip(ctx context.Context, id int64) (trips.Trip, error) {
	var t trips.Trip
	var start, end, status string
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, destination, start_date, end_date, no_of_adults, status
		FROM trips WHERE id = ?`, id)
	if err := row.Scan(&t.ID, &t.TenantID, &t.Destination, &start, &end, &t.NoOfAdults, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trips.Trip{}, ErrNotFound
		}
		return trips.Trip{}, err
	}
	t.StartDate = parseTime(start)
	t.EndDate = parseTime(end)
	t.Status = trips.TripStatus(status)
	return t, nil
}

func (s *Store) CreateQuote(ctx context.Context, q trips.Quote) (trips.Quote, error) {
	q.CreatedAt = time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (trip_id, given_price, comments, created_at) VALUES (?, ?, ?, ?)`,
		q.TripID, q.GivenPrice.Value.String(), q.Comments, formatTime(q.CreatedAt))
	if err != nil {
		return trips.Quote{}, fmt.Errorf("create quote: %w", err)
	}
	q.ID, _ = res.LastInsertId()
	// Quoting a trip moves it along.
	_, err = s.db.ExecContext(ctx, "UPDATE trips SET status = ? WHERE id = ? AND status = ?",
		string(trips.TripStatusQuoted), q.TripID, string(trips.TripStatusNew))
	if err != nil {
		return trips.Quote{}, err
	}
	return q, nil
}

func (s *Store) ListQuotes(ctx context.Context, tripID int64) ([]trips.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, trip_id, given_price, comments, created_at
		FROM quotes WHERE trip_id = ? ORDER BY id`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []trips.Quote
	for rows.Next() {
		var q trips.Quote
		var price, created string
		if err := rows.Scan(&q.ID, &q.TripID, &price, &q.Comments, &created); err != nil {
			return nil, err
		}
		q.GivenPrice = generic.MustParseMoney(price)
		q.CreatedAt = parseTime(created)
		out = append(out, q)
	}
	return out, rows.Err()
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func (s *Store) CreateNotification(ctx context.Context, message string) (trips.Notification, error) {
	created := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (message, created_at) VALUES (?, ?)",
		message, formatTime(created))
	if err != nil {
		return trips.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	id, _ := res.LastInsertId()
	return trips.Notification{ID: id, Message: message, CreatedAt: created}, nil
}

// ListNotifications returns the feed newest-first.
func (s *Store) ListNotifications(ctx context.Context, page, perPage int) ([]trips.Notification, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, message, created_at, read_at
		FROM notifications ORDER BY id DESC LIMIT ? OFFSET ?`,
		perPage, offsetOf(page, perPage))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []trips.Notification
	for rows.Next() {
		var n trips.Notification
		var created string
		var read sql.NullString
		if err := rows.Scan(&n.ID, &n.Message, &created, &read); err != nil {
			return nil, 0, err
		}
		n.CreatedAt = parseTime(created)
		if read.Valid {
			at := parseTime(read.String)
			n.ReadAt = &at
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// MarkNotificationRead stamps read_at and returns the updated record.
func (s *Store) MarkNotificationRead(ctx context.Context, id int64) (trips.Notification, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read_at = ? WHERE id = ?", formatTime(now), id)
	if err != nil {
		return trips.Notification{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return trips.Notification{}, ErrNotFound
	}

	var out trips.Notification
	var created string
	var read sql.NullString
	row := s.db.QueryRowContext(ctx, "SELECT id, message, created_at, read_at FROM notifications WHERE id = ?", id)
	if err := row.Scan(&out.ID, &out.Message, &created, &read); err != nil {
		return trips.Notification{}, err
	}
	out.CreatedAt = parseTime(created)
	if read.Valid {
		at := parseTime(read.String)
		out.ReadAt = &at
	}
	return out, nil
}
