package server

import (
	"time"

	"github.com/google/uuid"
)

var timeNowUTC = func() time.Time {
	return time.Now().UTC()
}

// newConnID tags a websocket connection for log correlation.
func newConnID() string {
	return uuid.NewString()
}
