package common

import (
	"github.com/google/uuid"
)

// NewID generates a prefixed opaque identifier: "<prefix>_<uuid>".
func NewID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

// NewRequestID generates a correlation ID for one resources/load,
// resources/observe, or resources/attachment action, threaded through
// logging so a batch's log lines can be grep'd by request.
func NewRequestID() string {
	return NewID("req")
}
