package application

import "errors"

var (
	// ErrInvalidSignature marks a notification that failed the keyed-hash
	// check. Terminal rejection, never retried.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrPaymentNotFound means no payment exists for the referenced order.
	// Gateway/local inconsistency, surfaced for manual investigation.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrAlreadyFinalized guards terminal payments against manual overwrite.
	ErrAlreadyFinalized = errors.New("payment already finalized")

	// ErrPersistence wraps transient store failures; safe to retry.
	ErrPersistence = errors.New("persistence failure")
)
