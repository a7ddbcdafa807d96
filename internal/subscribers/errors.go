package subscribers

import "errors"

var (
	// ErrAlreadyRegistered indicates the URL is already in the registry.
	ErrAlreadyRegistered = errors.New("webhook already registered")
	// ErrValidationFailed indicates the probe call to the candidate URL
	// failed, so the registration was rejected.
	ErrValidationFailed = errors.New("webhook validation failed")
)
