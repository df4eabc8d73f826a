package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/hotels"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAuthenticate_TokenRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, "Admin", "admin@example.com", "secret", 0); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	token, user, err := store.Authenticate(ctx, "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a token")
	}

	got, err := store.UserByToken(ctx, token)
	if err != nil {
		t.Fatalf("UserByToken failed: %v", err)
	}
	if got.ID != user.ID || got.Email != "admin@example.com" {
		t.Errorf("UserByToken = %+v, want user %d", got, user.ID)
	}

	if _, _, err := store.Authenticate(ctx, "admin@example.com", "wrong"); err != ErrNotFound {
		t.Errorf("Wrong password should fail with ErrNotFound, got %v", err)
	}
	if _, err := store.UserByToken(ctx, "bogus"); err != ErrNotFound {
		t.Errorf("Unknown token should fail with ErrNotFound, got %v", err)
	}
}

func TestListHotels_FilterAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("Hotel %02d", i)
		if i%3 == 0 {
			name = fmt.Sprintf("Beach Resort %02d", i)
		}
		if _, err := store.CreateHotel(ctx, hotels.Hotel{Name: name, Location: "Goa"}); err != nil {
			t.Fatalf("CreateHotel failed: %v", err)
		}
	}

	items, total, err := store.ListHotels(ctx, "", 2, 10)
	if err != nil {
		t.Fatalf("ListHotels failed: %v", err)
	}
	if total != 12 || len(items) != 2 {
		t.Errorf("Page 2 = %d items of %d, want 2 of 12", len(items), total)
	}

	// Filter matches name or location, case-insensitively.
	items, total, err = store.ListHotels(ctx, "beach", 1, 10)
	if err != nil {
		t.Fatalf("ListHotels failed: %v", err)
	}
	if total != 4 || len(items) != 4 {
		t.Errorf("Filtered = %d items of %d, want 4 of 4", len(items), total)
	}
}

func TestHotelPrice_DecimalAndDateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	hotel, err := store.CreateHotel(ctx, hotels.Hotel{Name: "Round Trip Inn"})
	if err != nil {
		t.Fatalf("CreateHotel failed: %v", err)
	}

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 19, 23, 59, 59, 0, time.UTC)
	created, err := store.CreateHotelPrice(ctx, hotels.Price{
		HotelID:   hotel.ID,
		Persons:   2,
		BasePrice: generic.MustParseMoney("4500.50"),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("CreateHotelPrice failed: %v", err)
	}
	if created.ID == 0 {
		t.Error("Expected an assigned id")
	}

	rules, err := store.ListHotelPrices(ctx, hotel.ID)
	if err != nil {
		t.Fatalf("ListHotelPrices failed: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("Got %d rules, want 1", len(rules))
	}
	if rules[0].BasePrice.String() != "4500.50" {
		t.Errorf("Price round-tripped to %s, want 4500.50", rules[0].BasePrice)
	}
	if !rules[0].StartDate.Equal(start) || !rules[0].EndDate.Equal(end) {
		t.Errorf("Dates round-tripped to %v..%v, want %v..%v",
			rules[0].StartDate, rules[0].EndDate, start, end)
	}
}

func TestNotifications_NewestFirstAndMarkRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.CreateNotification(ctx, "first")
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}
	second, err := store.CreateNotification(ctx, "second")
	if err != nil {
		t.Fatalf("CreateNotification failed: %v", err)
	}

	items, total, err := store.ListNotifications(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("Got %d of %d notifications, want 2 of 2", len(items), total)
	}
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Errorf("Feed order = [%d, %d], want newest first [%d, %d]",
			items[0].ID, items[1].ID, second.ID, first.ID)
	}
	if items[0].ReadAt != nil {
		t.Error("New notification should be unread")
	}

	marked, err := store.MarkNotificationRead(ctx, first.ID)
	if err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	if marked.ReadAt == nil {
		t.Error("Expected a read timestamp")
	}
}
