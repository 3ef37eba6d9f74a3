package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrHRNotFound          = errors.New("hr not found")
	ErrAssetNotFound       = errors.New("asset not found")
	ErrRequestNotFound     = errors.New("request not found")
	ErrAffiliationNotFound = errors.New("employee affiliation not found")
	ErrPackageNotFound     = errors.New("package not found")

	ErrUserExists    = errors.New("user already exists")
	ErrInvalidHRCode = errors.New("invalid hr secret code")

	// ErrStatusConflict is returned when a conditional status update matched
	// no document: the request is missing or already left the expected state.
	ErrStatusConflict    = errors.New("request is not in the expected status")
	ErrInvalidTransition = errors.New("invalid status transition")

	ErrCapacityExceeded  = errors.New("employee limit reached, please upgrade package")
	ErrInsufficientStock = errors.New("not enough asset quantity")
	ErrValidation        = errors.New("validation failed")

	ErrUpstreamPayment     = errors.New("payment provider error")
	ErrPaymentNotCompleted = errors.New("payment not completed")

	ErrLockBusy = errors.New("resource is locked, try again")
)
