package metrics

import (
	"time"

	obserrors "github.com/onepos/storefront/internal/observability/errors"
	"github.com/onepos/storefront/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// ResultFor maps an operation error to a result tag value.
func ResultFor(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// AuthMetric captures one session-manager operation for metric emission.
type AuthMetric struct {
	Operation string
	Result    string
	Duration  time.Duration
	Err       error
}

// EmitAuthOperation emits standardised session operation metrics.
func EmitAuthOperation(sink statsd.Sink, in AuthMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"operation": in.Operation,
		"result":    in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("auth.operation", 1, tags)

	if in.Duration > 0 {
		sink.Timing("auth.duration", in.Duration, CloneTags(tags))
	}
}

// CacheMetric captures a catalog cache lookup.
type CacheMetric struct {
	Endpoint string
	Hit      bool
}

// EmitCacheLookup emits catalog cache hit/miss counters.
func EmitCacheLookup(sink statsd.Sink, in CacheMetric) {
	if sink == nil {
		return
	}

	outcome := "miss"
	if in.Hit {
		outcome = "hit"
	}
	sink.Count("catalog.cache", 1, map[string]string{
		"endpoint": in.Endpoint,
		"outcome":  outcome,
	})
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
