package handler

import (
	"errors"
	"net/http"

	"stagesight/internal/checkout"
	apperrors "stagesight/pkg/app_errors"
	"stagesight/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindUri(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindUri(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// ParseUUIDParam 解析路徑上的 uuid，失敗時直接回 400
func ParseUUIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + label + " id"})
		return uuid.Nil, false
	}
	return id, true
}

// errorStatus 將 app error 對應到 HTTP status 與回應訊息
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrSeatNotFound):
		return http.StatusNotFound, err.Error()

	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidGridDimensions),
		errors.Is(err, apperrors.ErrInvalidProof):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, apperrors.ErrProofTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()

	case errors.Is(err, apperrors.ErrSelectionFull),
		errors.Is(err, apperrors.ErrNoSeatsSelected):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, apperrors.ErrSeatReserved),
		errors.Is(err, apperrors.ErrSeatUnavailable),
		errors.Is(err, apperrors.ErrNotReady),
		errors.Is(err, apperrors.ErrSubmissionInProgress),
		errors.Is(err, apperrors.ErrSessionBusy),
		errors.Is(err, apperrors.ErrAlreadyConfirmed),
		errors.Is(err, apperrors.ErrNotConfirmed):
		return http.StatusConflict, err.Error()

	case errors.Is(err, apperrors.ErrUploadFailed):
		return http.StatusBadGateway, err.Error()

	case errors.Is(err, apperrors.ErrPersistence):
		// 訂位寫入失敗的原因要讓使用者看到
		return http.StatusInternalServerError, err.Error()

	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "Forbidden"

	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// writeError 記錄錯誤並回應 JSON，extra 會合併到回應內容
func writeError(c *gin.Context, component, operation string, err error, extra gin.H) {
	log := logger.WithComponent(component).With(zap.String("operation", operation), zap.Error(err))

	body := gin.H{}
	var status int

	var verrs checkout.ValidationErrors
	if errors.As(err, &verrs) {
		status = http.StatusUnprocessableEntity
		body["error"] = "Validation failed"
		body["fields"] = verrs
	} else {
		var msg string
		status, msg = errorStatus(err)
		body["error"] = msg
	}

	for k, v := range extra {
		body[k] = v
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Int("status", status))
	} else {
		log.Warn("Request rejected", zap.Int("status", status))
	}
	c.JSON(status, body)
}

// attachment 以下載檔案的形式回應
func attachment(c *gin.Context, fileName, contentType string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}
