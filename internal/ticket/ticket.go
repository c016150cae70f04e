// Package ticket 產生訂位確認後可下載的 PDF 票券
package ticket

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const brand = "StageSight"

type Data struct {
	EventName          string
	Date               string
	Time               string
	Venue              string
	Seats              []string
	ConfirmationNumber string
	CustomerName       string
}

// Render 將票券寫入 w，不影響任何訂位狀態
func Render(w io.Writer, d Data) error {
	if d.ConfirmationNumber == "" {
		return errors.New("ticket: missing confirmation number")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s Ticket %s", brand, d.ConfirmationNumber), true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// 標題列
	pdf.SetFillColor(50, 120, 200)
	pdf.Rect(0, 0, 210, 20, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(0, 6)
	pdf.CellFormat(210, 10, brand+" Ticket", "", 0, "C", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetXY(0, 32)
	pdf.CellFormat(210, 12, tr(d.EventName), "", 0, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Date: " + d.Date,
		"Time: " + d.Time,
		"Venue: " + d.Venue,
		"Confirmation: " + d.ConfirmationNumber,
		"Name: " + d.CustomerName,
	}
	y := 55.0
	for _, line := range lines {
		pdf.Text(20, y, tr(line))
		y += 10
	}

	pdf.Text(20, 120, "Seats:")
	pdf.SetXY(48, 115.5)
	pdf.MultiCell(75, 6, tr(strings.Join(d.Seats, ", ")), "", "L", false)

	// QR code 預留區
	pdf.Rect(130, 55, 50, 50, "D")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetXY(130, 78)
	pdf.CellFormat(50, 4, "QR Code", "", 0, "C", false, 0, "")

	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(0, 270, 210, 27, "F")
	pdf.SetTextColor(100, 100, 100)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(0, 276)
	pdf.CellFormat(210, 5, "This ticket is valid only with proof of identification.", "", 2, "C", false, 0, "")
	pdf.CellFormat(210, 8, tr("© "+brand), "", 0, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("ticket: render pdf: %w", err)
	}
	return nil
}

// FileName 下載時的檔名
func FileName(confirmationNumber string) string {
	return fmt.Sprintf("ticket-%s.pdf", confirmationNumber)
}
