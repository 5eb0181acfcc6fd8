package service

import "errors"

// Sentinel errors for the billing core. Handlers map these onto HTTP statuses;
// anything not in this list is treated as an infrastructure failure.
var (
	// Not found — caller error, no retry.
	ErrReceiptNotFound  = errors.New("receipt not found")
	ErrItemNotFound     = errors.New("receipt item not found")
	ErrItemRefNotFound  = errors.New("item not found in any catalog")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrPetNotFound      = errors.New("pet not found")

	// Invalid state — mutation attempted on an immutable receipt.
	ErrReceiptAlreadyCompleted = errors.New("receipt is already completed")

	// Validation — malformed request, correct and retry.
	ErrPetRequired          = errors.New("a pet is required for this item")
	ErrCustomerRequired     = errors.New("receipt has no customer attached")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrUseVaccinationLookup = errors.New("vaccine doses must be added through the vaccination lookup")
	ErrInsufficientStock    = errors.New("insufficient stock at branch")

	// Fatal for the yearly review — the whole run aborts.
	ErrRankTableEmpty = errors.New("membership rank table is empty")
)
