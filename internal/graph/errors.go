package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrMediaLookup indicates the media URL resolution failed (non-success
	// status or a response without a url field).
	ErrMediaLookup = errors.New("media url lookup failed")
)

// StatusError reports a non-success HTTP status from the Graph API.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Code)
}
