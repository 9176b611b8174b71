package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when a request reaches the GraphQL handler.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the handler wrote its response.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
