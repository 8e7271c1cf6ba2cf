package metrics

import (
	"strconv"
	"time"

	"github.com/onepos/storefront/internal/observability/statsd"
)

// HTTPMetric captures one served HTTP request.
type HTTPMetric struct {
	Method   string
	Status   int
	Duration time.Duration
}

// EmitHTTPRequest emits request count and timing. Paths are not tagged
// so metric cardinality stays bounded.
func EmitHTTPRequest(sink statsd.Sink, in HTTPMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"method": in.Method,
		"status": strconv.Itoa(in.Status),
	}
	sink.Count("http.request", 1, tags)

	if in.Duration > 0 {
		sink.Timing("http.duration", in.Duration, CloneTags(tags))
	}
}
