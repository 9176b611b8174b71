// Package events declares the event types flowing over the eventbus.
package events

import "time"

// QueryStart is emitted before a query begins resolving.
type QueryStart struct {
	Source        string
	OperationName string
}

// QueryFinish is emitted after a query produced its response envelope.
type QueryFinish struct {
	Source        string
	OperationName string
	// ResponseKind is the envelope variant, e.g. "success" or
	// "partial_success".
	ResponseKind string
	ErrorCount   int
	Duration     time.Duration
}
