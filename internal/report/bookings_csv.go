// Package report 管理後台的訂位報表匯出
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"stagesight/internal/model"
)

var bookingHeaders = []string{
	"Customer Name",
	"Email",
	"Event",
	"Date",
	"Seats",
	"Amount",
	"Payment Reference",
	"Booking Date",
}

const (
	unknownEvent = "Unknown event"
	unknownDate  = "Unknown"
	currency     = "R"
)

// WriteBookingsCSV 寫出訂位報表，所有欄位皆由 encoding/csv 處理跳脫
func WriteBookingsCSV(w io.Writer, bookings []*model.Booking) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(bookingHeaders); err != nil {
		return err
	}

	for _, b := range bookings {
		event, date := unknownEvent, unknownDate
		if b.Show != nil {
			if b.Show.Title != "" {
				event = b.Show.Title
			}
			if b.Show.Date != "" {
				date = b.Show.Date
			}
		}

		row := []string{
			b.CustomerName,
			b.CustomerEmail,
			event,
			date,
			fmt.Sprintf("%d", b.Seats),
			currency + b.TotalAmount.StringFixed(2),
			b.PaymentReference,
			b.CreatedAt.Format(time.DateOnly),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// BookingsFileName 依日期產生報表檔名
func BookingsFileName(now time.Time) string {
	return fmt.Sprintf("bookings_report_%s.csv", now.Format(time.DateOnly))
}
