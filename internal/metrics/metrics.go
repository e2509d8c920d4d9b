// Package metrics defines the collector used by the HTTP layer and the
// balance propagator. The Prometheus implementation lives in collector.go;
// NoOp is used by tests and when METRICS_ENABLED=false.
package metrics

import "time"

type Collector interface {
	// RecordRequest records one completed HTTP request.
	RecordRequest(method, route string, status int, duration time.Duration)

	// RecordPropagation records one ancestor walk: how many ancestors received
	// the delta and why the walk stopped.
	RecordPropagation(steps int, stopReason string)

	// RecordPosting records a journal entry posting or void.
	RecordPosting(action string, lines int)
}

type NoOp struct{}

func (NoOp) RecordRequest(method, route string, status int, duration time.Duration) {}
func (NoOp) RecordPropagation(steps int, stopReason string)                         {}
func (NoOp) RecordPosting(action string, lines int)                                 {}
