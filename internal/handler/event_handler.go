package handler

import (
	"net/http"

	"stagesight/internal/model"
	"stagesight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterRoutes 查詢為公開路由，新增/修改/刪除掛在 admin group
func (h *EventHandler) RegisterRoutes(api *gin.RouterGroup, admin *gin.RouterGroup) {
	api.GET("events", h.List)
	api.GET("events/:id", h.GetByID)
	api.GET("events/:id/seats", h.SeatMap)

	admin.POST("events", h.Create)
	admin.PUT("events/:id", h.Update)
	admin.DELETE("events/:id", h.Delete)
}

// CreateEventRequest 建立場次請求
type CreateEventRequest struct {
	Title          string          `json:"title" binding:"required"`
	Venue          *string         `json:"venue"`
	Date           string          `json:"date" binding:"required,datetime=2006-01-02"`
	Time           *string         `json:"time"`
	Price          decimal.Decimal `json:"price"`
	Category       *string         `json:"category"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"image_url"`
	AvailableSeats *int            `json:"available_seats" binding:"omitempty,min=0"`
}

// UpdateEventRequest 更新場次請求，只更新有帶的欄位
type UpdateEventRequest struct {
	Title          *string          `json:"title" binding:"omitempty,min=1"`
	Venue          *string          `json:"venue"`
	Date           *string          `json:"date" binding:"omitempty,datetime=2006-01-02"`
	Time           *string          `json:"time"`
	Price          *decimal.Decimal `json:"price"`
	Category       *string          `json:"category"`
	Description    *string          `json:"description"`
	ImageURL       *string          `json:"image_url"`
	AvailableSeats *int             `json:"available_seats" binding:"omitempty,min=0"`
}

func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetByID(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "event")
	if !ok {
		return
	}
	event, err := h.service.GetByID(c, id)
	if err != nil {
		h.handleError(c, err, "GetByID")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) SeatMap(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "event")
	if !ok {
		return
	}
	seatMap, err := h.service.SeatMap(c, id)
	if err != nil {
		h.handleError(c, err, "SeatMap")
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if req.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	event := &model.Event{
		Title:       req.Title,
		Venue:       req.Venue,
		Date:        req.Date,
		Time:        req.Time,
		Price:       req.Price,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.AvailableSeats != nil {
		event.AvailableSeats = *req.AvailableSeats
	}

	created, err := h.service.Create(c, event)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "event")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateEventParams{
		Title:          req.Title,
		Venue:          req.Venue,
		Date:           req.Date,
		Time:           req.Time,
		Price:          req.Price,
		Category:       req.Category,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		AvailableSeats: req.AvailableSeats,
	}
	if params.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one field is required"})
		return
	}
	if params.Price != nil && params.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
		return
	}

	updated, err := h.service.Update(c, id, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := ParseUUIDParam(c, "id", "event")
	if !ok {
		return
	}
	if err := h.service.Delete(c, id); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	writeError(c, "event_handler", operation, err, nil)
}
