package observability

import (
	"context"
	"log/slog"
	"time"
)

// TimeOperationResult runs fn, logs its outcome and records the operation
// counters and duration. The context is handed to the logger, so correlation
// attributes carried in it end up on the log line.
func TimeOperationResult[T any](ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	recordOperation(ctx, logger, metrics, operation, time.Since(start), err)
	return result, err
}

func recordOperation(ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, duration time.Duration, err error) {
	if logger != nil {
		if err != nil {
			logger.ErrorContext(ctx, "operation failed",
				"operation", operation,
				DurationKey, duration.Milliseconds(),
				ErrorKey, err.Error(),
			)
		} else {
			logger.InfoContext(ctx, "operation completed",
				"operation", operation,
				DurationKey, duration.Milliseconds(),
			)
		}
	}

	if metrics != nil {
		tag := T("operation", operation)
		metrics.Timing(MetricOperationDuration, duration, tag)
		metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}
}
