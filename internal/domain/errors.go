package domain

import "errors"

var (
	// ErrNotFound names the case where no record exists for a given
	// (version, variant) pair. The CanonicalRecordRepository implementations
	// do not return it: FindActive reports that case as (nil, nil).
	ErrNotFound = errors.New("canonical record not found")

	// ErrInvalidPayload names an IntegrityPayload that fails the shape/length
	// checks. VerifyIntegrity does not return it: it answers such a payload
	// with a REJECTED decision carrying ErrCodeInvalidRequest.
	ErrInvalidPayload = errors.New("invalid integrity payload")

	// ErrInvalidRecord names a CanonicalRecord that fails validation on
	// registration. The admin handler does not return it: it answers such a
	// request with a 400 carrying the validator's message.
	ErrInvalidRecord = errors.New("invalid canonical record")
)
