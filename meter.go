package sapo

import "time"

// Meter observes request lifecycle events for logging or monitoring.
// Implementations live in the meter subpackage.
type Meter interface {
	// OnRequest is called after admission, before dispatch.
	OnRequest(event RequestEvent)

	// OnResult is called with the outcome of a dispatch, including
	// admission rejections (which carry a zero Status).
	OnResult(event ResultEvent)
}

// RequestEvent describes a request entering the transport.
type RequestEvent struct {
	Method string
	Path   string
}

// ResultEvent describes the outcome of a request.
type ResultEvent struct {
	Method   string
	Path     string
	Status   int
	Duration time.Duration
	Err      error
}

// noopMeter is the default when no meter is configured.
type noopMeter struct{}

func (noopMeter) OnRequest(RequestEvent) {}
func (noopMeter) OnResult(ResultEvent)   {}
