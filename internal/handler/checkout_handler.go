package handler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"stagesight/internal/checkout"
	"stagesight/internal/middleware"
	"stagesight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutHandler struct {
	service      service.CheckoutService
	maxProofSize int64
}

func NewCheckoutHandler(service service.CheckoutService, maxProofSize int64) *CheckoutHandler {
	if maxProofSize <= 0 {
		maxProofSize = checkout.DefaultMaxProofSize
	}
	return &CheckoutHandler{service: service, maxProofSize: maxProofSize}
}

// RegisterRoutes 結帳流程，訪客與登入使用者皆可使用
func (h *CheckoutHandler) RegisterRoutes(api *gin.RouterGroup) {
	router := api.Group("checkout/sessions")
	{
		router.POST("", h.Start)
		router.GET(":id", h.Get)
		router.POST(":id/seats/:seatId", h.ToggleSeat)
		router.PUT(":id/customer", h.UpdateCustomer)
		router.POST(":id/proof", h.AttachProof)
		router.POST(":id/submit", h.Submit)
		router.GET(":id/ticket", h.Ticket)
		router.DELETE(":id", h.Cancel)
	}
}

type StartCheckoutRequest struct {
	ShowID uuid.UUID `json:"show_id" binding:"required"`
}

func (h *CheckoutHandler) Start(c *gin.Context) {
	var req StartCheckoutRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	sess, err := h.service.Start(c, req.ShowID, middleware.CurrentUser(c))
	if err != nil {
		h.handleError(c, err, "Start", nil)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	sess, err := h.service.Get(c, c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Get", nil)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *CheckoutHandler) ToggleSeat(c *gin.Context) {
	sess, result, err := h.service.ToggleSeat(c, c.Param("id"), c.Param("seatId"))
	if err != nil {
		h.handleError(c, err, "ToggleSeat", sess)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "session": sess})
}

// UpdateCustomer 驗證失敗回 422，但輸入內容已保存在 session
func (h *CheckoutHandler) UpdateCustomer(c *gin.Context) {
	var form checkout.CustomerForm
	if err := BindJson(c, &form); err != nil {
		return
	}

	sess, err := h.service.UpdateCustomer(c, c.Param("id"), form)
	if err != nil {
		h.handleError(c, err, "UpdateCustomer", sess)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *CheckoutHandler) AttachProof(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment proof file is required"})
		return
	}
	if header.Size > h.maxProofSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("Payment proof must be at most %d bytes", h.maxProofSize),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment proof file"})
		return
	}
	defer file.Close()

	// 多讀 1 byte 讓 service 判斷是否超過上限
	data, err := io.ReadAll(io.LimitReader(file, h.maxProofSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment proof file"})
		return
	}

	sess, err := h.service.AttachProof(c, c.Param("id"), header.Filename, data)
	if err != nil {
		h.handleError(c, err, "AttachProof", sess)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *CheckoutHandler) Submit(c *gin.Context) {
	sess, err := h.service.Submit(c, c.Param("id"))
	if err != nil {
		h.handleError(c, err, "Submit", sess)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *CheckoutHandler) Ticket(c *gin.Context) {
	var buf bytes.Buffer
	fileName, err := h.service.Ticket(c, c.Param("id"), &buf)
	if err != nil {
		h.handleError(c, err, "Ticket", nil)
		return
	}
	attachment(c, fileName, "application/pdf", buf.Bytes())
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c, c.Param("id")); err != nil {
		h.handleError(c, err, "Cancel", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleError 失敗時一併回傳 session，讓前端保留已填寫的內容與失敗原因
func (h *CheckoutHandler) handleError(c *gin.Context, err error, operation string, sess *checkout.Session) {
	var extra gin.H
	if sess != nil {
		extra = gin.H{"session": sess}
	}
	writeError(c, "checkout_handler", operation, err, extra)
}
