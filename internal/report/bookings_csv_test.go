package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"stagesight/internal/model"
	"stagesight/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBookingsCSV(t *testing.T) {
	created := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{
			CustomerName:     "Doe, John",
			CustomerEmail:    "john@example.com",
			Seats:            2,
			TotalAmount:      decimal.NewFromInt(2700),
			PaymentReference: "JohnDoe19900101",
			CreatedAt:        created,
			Show:             &model.Event{Title: `The "Best" Show`, Date: "2025-04-01"},
		},
		{
			CustomerName:     "Jane Roe",
			CustomerEmail:    "jane@example.com",
			Seats:            1,
			TotalAmount:      decimal.RequireFromString("1100.5"),
			PaymentReference: "REF-00001",
			CreatedAt:        created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.WriteBookingsCSV(&buf, bookings))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Customer Name", "Email", "Event", "Date", "Seats", "Amount", "Payment Reference", "Booking Date"}, records[0])
	assert.Equal(t, []string{"Doe, John", "john@example.com", `The "Best" Show`, "2025-04-01", "2", "R2700.00", "JohnDoe19900101", "2025-03-14"}, records[1])
	assert.Equal(t, []string{"Jane Roe", "jane@example.com", "Unknown event", "Unknown", "1", "R1100.50", "REF-00001", "2025-03-14"}, records[2])
}

func TestWriteBookingsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteBookingsCSV(&buf, nil))
	assert.Equal(t, "Customer Name,Email,Event,Date,Seats,Amount,Payment Reference,Booking Date\n", buf.String())
}

func TestBookingsFileName(t *testing.T) {
	assert.Equal(t, "bookings_report_2025-03-14.csv", report.BookingsFileName(time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC)))
}
