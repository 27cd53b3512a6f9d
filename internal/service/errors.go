package service

import "errors"

// Ledger error taxonomy. All are detected before any write commits; callers
// can rely on no partial state being left behind. ErrContention means no
// write happened at all and the operation is safe to retry.
var (
	ErrNotFound             = errors.New("accessory record not found")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrInsufficientQuantity = errors.New("not enough stock for the requested quantity")
	ErrNotDerived           = errors.New("record has no source to return to")
	ErrSourceNotFound       = errors.New("source record no longer exists")
	ErrInvalidTransition    = errors.New("only reserved records can be issued")
	ErrContention           = errors.New("record is locked by another operation, retry")

	ErrUnknownStatus      = errors.New("unknown target status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBarcodeTaken       = errors.New("barcode already in use")
)
