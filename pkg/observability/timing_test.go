package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeOperationResult(t *testing.T) {
	t.Run("records success", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})
		metrics := NewInMemoryMetrics()

		result, err := TimeOperationResult(context.Background(), logger, metrics,
			"planning.place", func() (int, error) {
				return 42, nil
			})
		require.NoError(t, err)
		assert.Equal(t, 42, result)

		tag := T("operation", "planning.place")
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tag))
		assert.Zero(t, metrics.GetCounter(MetricOperationErrors, tag))
		assert.Len(t, metrics.GetTimings(MetricOperationDuration, tag), 1)

		output := buf.String()
		assert.Contains(t, output, "operation completed")
		assert.Contains(t, output, `"operation":"planning.place"`)
		assert.Contains(t, output, DurationKey)
	})

	t.Run("records failure", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})
		metrics := NewInMemoryMetrics()

		_, err := TimeOperationResult(context.Background(), logger, metrics,
			"planning.place", func() (int, error) {
				return 0, errors.New("calendar unavailable")
			})
		require.Error(t, err)

		tag := T("operation", "planning.place")
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationTotal, tag))
		assert.Equal(t, int64(1), metrics.GetCounter(MetricOperationErrors, tag))

		output := buf.String()
		assert.Contains(t, output, "operation failed")
		assert.Contains(t, output, "calendar unavailable")
	})

	t.Run("context correlation id reaches the log line", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})
		ctx := WithCorrelationID(context.Background(), "corr-timing-1")

		_, err := TimeOperationResult(ctx, logger, nil, "planning.place", func() (struct{}, error) {
			return struct{}{}, nil
		})
		require.NoError(t, err)

		assert.Contains(t, buf.String(), `"correlation_id":"corr-timing-1"`)
	})

	t.Run("nil logger and metrics are tolerated", func(t *testing.T) {
		result, err := TimeOperationResult(context.Background(), nil, nil, "noop", func() (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	})
}
