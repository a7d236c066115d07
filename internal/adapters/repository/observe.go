package repository

import (
	"errors"
	"time"

	"github.com/okian/bistro/pkg/metrics"
)

// observe records latency and outcome of a store call. Missing records are
// a normal outcome and are counted separately from failures.
func observe(store, op string, start time.Time, errp *error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	err := *errp
	switch {
	case err == nil:
		metrics.RecordRepositoryOperation(store, op, ms, false)
	case errors.Is(err, ErrNotFound):
		metrics.RecordRepositoryOperation(store, op, ms, false)
		metrics.RecordErrorByComponent("repository", "not_found")
	default:
		metrics.RecordRepositoryOperation(store, op, ms, true)
		metrics.RecordErrorByComponent("repository", "store_failure")
		metrics.RecordErrorLatency("repository", "store_failure", ms)
	}
}
