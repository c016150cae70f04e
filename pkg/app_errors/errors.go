package apperrors

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrInvalidInput    = errors.New("invalid input")

	// 選位
	ErrInvalidGridDimensions = errors.New("invalid seat grid dimensions")
	ErrSeatNotFound          = errors.New("seat not found")
	ErrSeatReserved          = errors.New("seat is reserved")
	ErrSelectionFull         = errors.New("seat selection is full")
	ErrNoSeatsSelected       = errors.New("no seats selected")
	ErrSeatUnavailable       = errors.New("seat no longer available")

	// 結帳
	ErrValidation           = errors.New("validation failed")
	ErrInvalidProof         = errors.New("payment proof must be an image or PDF")
	ErrProofTooLarge        = errors.New("payment proof exceeds maximum size")
	ErrUploadFailed         = errors.New("payment proof upload failed")
	ErrNotReady             = errors.New("checkout is not ready for submission")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrSessionBusy          = errors.New("checkout session is busy")
	ErrAlreadyConfirmed     = errors.New("checkout already confirmed")
	ErrNotConfirmed         = errors.New("checkout not confirmed")
	ErrPersistence          = errors.New("failed to save booking")

	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalServerError = errors.New("internal server error")
)
