package core

import "errors"

// StatusKind discriminates the outcome of a House operation.
type StatusKind string

const (
	KindOK          StatusKind = "OK"
	KindError       StatusKind = "ERROR"
	KindSale        StatusKind = "SALE"
	KindNoSale      StatusKind = "NO_SALE"
	KindSalePending StatusKind = "SALE_PENDING_PAYMENT"
)

// Status is the result of every lifecycle operation. Validation failures are
// reported as KindError wrapping one of the package's sentinel errors; the
// three close outcomes replace KindOK for CloseAuction.
type Status struct {
	Kind    StatusKind
	Message string
	Err     error

	// Sale is set for KindSale and KindSalePending.
	Sale *SaleRecord
}

// OK returns a successful status with no payload.
func OK() Status {
	return Status{Kind: KindOK}
}

// Failure wraps a validation error.
func Failure(err error) Status {
	return Status{Kind: KindError, Message: err.Error(), Err: err}
}

// IsOK reports whether the operation took effect. Every close outcome counts.
func (s Status) IsOK() bool {
	return s.Kind != KindError
}

// Is reports whether the status wraps target.
func (s Status) Is(target error) bool {
	return s.Err != nil && errors.Is(s.Err, target)
}
