package handler

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"stagesight/internal/checkout"
	"stagesight/internal/mocks"
	"stagesight/internal/model"
	"stagesight/internal/seating"
	apperrors "stagesight/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testMaxProofSize = 1024

func setupCheckoutTestRouter(mockService *mocks.CheckoutServiceMock) *gin.Engine {
	router := gin.New()
	NewCheckoutHandler(mockService, testMaxProofSize).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func testSession(state model.CheckoutState) *checkout.Session {
	return &checkout.Session{
		ID:      "s1",
		UserID:  model.GuestUserID,
		Show:    model.Event{ID: uuid.New(), Title: "Hamilton"},
		Seats:   seating.NewSelection(10),
		State:   state,
		History: []model.CheckoutState{model.CheckoutStateCollecting},
	}
}

func multipartRequest(t *testing.T, url, field, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest("POST", url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestCheckoutHandler_Start(t *testing.T) {
	t.Run("Success - guest", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)
		showID := uuid.New()

		mockService.On("Start", mock.Anything, showID, (*model.AuthUser)(nil)).
			Return(testSession(model.CheckoutStateCollecting), nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions", gin.H{"show_id": showID}))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "s1", body["id"])
		assert.Equal(t, "collecting", body["state"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - EventNotFound", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)
		showID := uuid.New()

		mockService.On("Start", mock.Anything, showID, mock.Anything).Return(nil, apperrors.ErrEventNotFound).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions", gin.H{"show_id": showID}))

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - MissingShowID", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions", gin.H{}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCheckoutHandler_Get(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("Get", mock.Anything, "s1").Return(testSession(model.CheckoutStateReady), nil).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/checkout/sessions/s1", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - Expired", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("Get", mock.Anything, "gone").Return(nil, apperrors.ErrSessionNotFound).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/checkout/sessions/gone", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_ToggleSeat(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("ToggleSeat", mock.Anything, "s1", "C9").
			Return(testSession(model.CheckoutStateCollecting), seating.ToggleAdded, nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/seats/C9", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "added", body["result"])
		assert.NotNil(t, body["session"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - SeatReserved", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("ToggleSeat", mock.Anything, "s1", "A1").
			Return(testSession(model.CheckoutStateCollecting), seating.ToggleResult(""), apperrors.ErrSeatReserved).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/seats/A1", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, apperrors.ErrSeatReserved.Error(), body["error"])
		assert.NotNil(t, body["session"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - SelectionFull", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("ToggleSeat", mock.Anything, "s1", "B2").
			Return(testSession(model.CheckoutStateCollecting), seating.ToggleResult(""), apperrors.ErrSelectionFull).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/seats/B2", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_UpdateCustomer(t *testing.T) {
	form := checkout.CustomerForm{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Birthdate: "1990-01-01",
	}

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("UpdateCustomer", mock.Anything, "s1", form).
			Return(testSession(model.CheckoutStateProofRequired), nil).Once()

		w := serve(router, createJSONHTTPRequest("PUT", "/api/v1/checkout/sessions/s1/customer", form))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - ValidationErrors keep session", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		bad := form
		bad.Email = "not-an-email"
		mockService.On("UpdateCustomer", mock.Anything, "s1", bad).
			Return(testSession(model.CheckoutStateCollecting), checkout.ValidationErrors{"email": "Please enter a valid email address."}).Once()

		w := serve(router, createJSONHTTPRequest("PUT", "/api/v1/checkout/sessions/s1/customer", bad))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody(t, w)
		fields := body["fields"].(map[string]interface{})
		assert.Contains(t, fields, "email")
		assert.NotNil(t, body["session"])
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_AttachProof(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("AttachProof", mock.Anything, "s1", "receipt.png", png).
			Return(testSession(model.CheckoutStateReady), nil).Once()

		w := serve(router, multipartRequest(t, "/api/v1/checkout/sessions/s1/proof", "file", "receipt.png", png))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - MissingFile", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		w := serve(router, multipartRequest(t, "/api/v1/checkout/sessions/s1/proof", "other", "receipt.png", png))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "AttachProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - TooLarge", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		big := bytes.Repeat([]byte{0}, testMaxProofSize+1)
		w := serve(router, multipartRequest(t, "/api/v1/checkout/sessions/s1/proof", "file", "big.png", big))

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		mockService.AssertNotCalled(t, "AttachProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - UploadFailed", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		sess := testSession(model.CheckoutStateProofRequired)
		sess.FailureReason = "disk full"
		mockService.On("AttachProof", mock.Anything, "s1", "receipt.png", png).
			Return(sess, fmt.Errorf("%w: disk full", apperrors.ErrUploadFailed)).Once()

		w := serve(router, multipartRequest(t, "/api/v1/checkout/sessions/s1/proof", "file", "receipt.png", png))

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "disk full")
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_Submit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		sess := testSession(model.CheckoutStateConfirmed)
		sess.ConfirmationNumber = "TKT-123456"
		mockService.On("Submit", mock.Anything, "s1").Return(sess, nil).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/submit", nil))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "TKT-123456", body["confirmation_number"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - Persistence", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		sess := testSession(model.CheckoutStateReady)
		sess.FailureReason = "connection reset"
		mockService.On("Submit", mock.Anything, "s1").
			Return(sess, fmt.Errorf("%w: connection reset", apperrors.ErrPersistence)).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/submit", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "failed to save booking: connection reset", body["error"])
		session := body["session"].(map[string]interface{})
		assert.Equal(t, "ready", session["state"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - InProgress", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("Submit", mock.Anything, "s1").Return(nil, apperrors.ErrSubmissionInProgress).Once()

		w := serve(router, createJSONHTTPRequest("POST", "/api/v1/checkout/sessions/s1/submit", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_Ticket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("Ticket", mock.Anything, "s1", mock.Anything).Return("ticket-TKT-123456.pdf", nil).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/checkout/sessions/s1/ticket", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="ticket-TKT-123456.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - NotConfirmed", func(t *testing.T) {
		mockService := mocks.NewCheckoutServiceMock()
		router := setupCheckoutTestRouter(mockService)

		mockService.On("Ticket", mock.Anything, "s1", mock.Anything).Return("", apperrors.ErrNotConfirmed).Once()

		w := serve(router, createJSONHTTPRequest("GET", "/api/v1/checkout/sessions/s1/ticket", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestCheckoutHandler_Cancel(t *testing.T) {
	mockService := mocks.NewCheckoutServiceMock()
	router := setupCheckoutTestRouter(mockService)

	mockService.On("Cancel", mock.Anything, "s1").Return(nil).Once()

	w := serve(router, createJSONHTTPRequest("DELETE", "/api/v1/checkout/sessions/s1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockService.AssertExpectations(t)
}
