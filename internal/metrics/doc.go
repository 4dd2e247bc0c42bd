// Package metrics provides metrics collection for scripts served by the
// development CGI host.
//
// It uses a channel-based event pipeline to asynchronously collect:
//   - Request counts per script
//   - Response times with percentile calculations (P50, P95, P99)
//   - HTTP status code distribution, which separates validation failures
//     (500) from successful additions
//
// The collector runs in a dedicated goroutine. Events are sent with
// non-blocking semantics so a full buffer never stalls the request path.
//
// Example usage:
//
//	collector := metrics.NewCollector(1000, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Script:     "/cgi-bin/add",
//		Duration:   15 * time.Millisecond,
//		StatusCode: 200,
//	})
//
//	snapshot := collector.Snapshot()
//
// Pending events are drained on shutdown.
package metrics
