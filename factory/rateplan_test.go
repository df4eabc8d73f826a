package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHotelRatePlan(t *testing.T) {
	// GIVEN: A two-rate plan, one without persons
	plan := `{
		"hotel_id": 7,
		"rates": [
			{"room_type_id": 1, "meal_plan_id": 2,
			 "base_price": "4500", "start_date": "2026-10-01", "end_date": "2026-12-19"},
			{"room_type_id": 3, "meal_plan_id": 2, "persons": 3,
			 "base_price": "9800.50", "start_date": "2026-12-20", "end_date": "2027-01-10"}
		]
	}`

	rules, err := ParseHotelRatePlan(plan)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, int64(7), rules[0].HotelID)
	assert.Equal(t, 2, rules[0].Persons, "persons defaults to 2")
	assert.Equal(t, "4500.00", rules[0].BasePrice.String())

	// End dates widen to cover the whole last day.
	assert.Equal(t, time.Date(2026, 12, 19, 23, 59, 59, 0, time.UTC), rules[0].EndDate)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), rules[0].StartDate)

	assert.Equal(t, 3, rules[1].Persons)
	assert.Equal(t, "9800.50", rules[1].BasePrice.String())
}

func TestParseHotelRatePlan_Invalid(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"missing hotel_id", `{"rates":[{"base_price":"100","start_date":"2026-01-01","end_date":"2026-02-01"}]}`},
		{"no rates", `{"hotel_id": 1, "rates": []}`},
		{"missing price", `{"hotel_id":1,"rates":[{"start_date":"2026-01-01","end_date":"2026-02-01"}]}`},
		{"negative price", `{"hotel_id":1,"rates":[{"base_price":"-5","start_date":"2026-01-01","end_date":"2026-02-01"}]}`},
		{"reversed range", `{"hotel_id":1,"rates":[{"base_price":"100","start_date":"2026-02-01","end_date":"2026-01-01"}]}`},
		{"bad date", `{"hotel_id":1,"rates":[{"base_price":"100","start_date":"yesterday","end_date":"2026-01-01"}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseHotelRatePlan(tc.json)
			assert.Error(t, err)
		})
	}
}

func TestParseCabRatePlan(t *testing.T) {
	plan := `{
		"cab_id": 3,
		"rates": [
			{"cab_type_id": 1, "location_id": 2,
			 "base_price": "1500", "start_date": "2026-10-01", "end_date": "2027-01-31"}
		]
	}`

	rules, err := ParseCabRatePlan(plan)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(3), rules[0].CabID)
	assert.Equal(t, "1500.00", rules[0].BasePrice.String())
	assert.Equal(t, time.Date(2027, 1, 31, 23, 59, 59, 0, time.UTC), rules[0].EndDate)
}
