package handler

import (
	"bytes"
	"net/http"
	"time"

	"stagesight/internal/report"
	"stagesight/internal/service"
	"stagesight/internal/ticket"

	"github.com/gin-gonic/gin"
)

// BookingHandler 後台訂位管理
type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(admin *gin.RouterGroup) {
	router := admin.Group("bookings")
	{
		router.GET("", h.List)
		router.GET("export", h.ExportCSV)
		router.GET(":id", h.GetByID)
		router.GET(":id/ticket", h.Ticket)
		router.DELETE(":id", h.Delete)
	}
}

func (h *BookingHandler) List(c *gin.Context) {
	bookings, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetByID(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "booking")
	if !ok {
		return
	}
	booking, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "booking")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(c, &buf); err != nil {
		h.handleError(c, err, "ExportCSV")
		return
	}
	attachment(c, report.BookingsFileName(time.Now()), "text/csv; charset=utf-8", buf.Bytes())
}

func (h *BookingHandler) Ticket(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "booking")
	if !ok {
		return
	}
	var buf bytes.Buffer
	booking, err := h.service.Ticket(c, id, &buf)
	if err != nil {
		h.handleError(c, err, "Ticket")
		return
	}
	attachment(c, ticket.FileName(booking.ConfirmationNumber), "application/pdf", buf.Bytes())
}

func (h *BookingHandler) handleError(c *gin.Context, err error, operation string) {
	writeError(c, "booking_handler", operation, err, nil)
}
