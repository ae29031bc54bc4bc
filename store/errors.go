package store

import "errors"

var (
	// ErrInvalidHandle is returned when a handle does not belong to the collection or view it is used with,
	// or refers to an erased element
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrUnknownKind is returned for a kind outside the configured kind set
	ErrUnknownKind = errors.New("element kind not configured")
	// ErrInvalidCandidate is returned for a candidate whose vertex list does not fit its kind
	ErrInvalidCandidate = errors.New("invalid candidate element")
	// ErrIDInUse is returned when a caller supplied id already names a different element of the kind
	ErrIDInUse = errors.New("element id already in use")
)
