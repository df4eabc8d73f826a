package hotels_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voyagehq/quote-engine/generic"
	"github.com/voyagehq/quote-engine/hotels"
)

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestBuildPricePayload_NormalizesStayRange(t *testing.T) {
	// GIVEN: A price form for Jan 1 through Jan 3 with base price 1000
	// WHEN: Building the submission payload
	// THEN: start_date is widened to 00:00:00 and end_date to 23:59:59 UTC

	payload := hotels.BuildPricePayload(hotels.NewPrice{
		RoomTypeID: 2,
		MealPlanID: 3,
		Persons:    2,
		BasePrice:  generic.NewMoney(1000),
		StartDate:  time.Date(2024, time.January, 1, 14, 30, 0, 0, time.UTC),
		EndDate:    time.Date(2024, time.January, 3, 9, 15, 0, 0, time.UTC),
	})

	assert.Equal(t, "2024-01-01 00:00:00", payload["start_date"])
	assert.Equal(t, "2024-01-03 23:59:59", payload["end_date"])
	assert.Equal(t, int64(2), payload["room_type_id"])
}

func TestNormalizeStayRange_MidnightInputsUnchanged(t *testing.T) {
	start, end := hotels.NormalizeStayRange(
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC),
	)
	require.Equal(t, "2024-01-01 00:00:00", start)
	require.Equal(t, "2024-01-03 23:59:59", end)
}

// =============================================================================
// SELECTOR TESTS
// =============================================================================

func TestPricesForHotel_FiltersByForeignKey(t *testing.T) {
	svc := hotels.NewService(nil)

	svc.Prices.Dispatch(generic.Action[hotels.Price]{
		Kind: generic.ActionListSuccess,
		Page: generic.Page[hotels.Price]{Data: []hotels.Price{
			{ID: 1, HotelID: 10, BasePrice: generic.NewMoney(100)},
			{ID: 2, HotelID: 11, BasePrice: generic.NewMoney(200)},
			{ID: 3, HotelID: 10, BasePrice: generic.NewMoney(300)},
		}},
	})

	got := svc.PricesForHotel(10)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Empty(t, svc.PricesForHotel(99))
}
