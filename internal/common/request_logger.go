package common

import (
	"time"

	"github.com/ternarybob/arbor"
)

// RequestLogger wraps arbor.ILogger with a correlation ID scoped to one
// resources/load, resources/observe, or resources/attachment action, so
// every log line the executor emits while servicing that action — across
// however many batches of BATCH_SIZE it takes — can be grep'd by request.
type RequestLogger struct {
	logger    arbor.ILogger
	requestID string
}

// NewRequestLogger scopes base to requestID.
func NewRequestLogger(base arbor.ILogger, requestID string) *RequestLogger {
	return &RequestLogger{logger: base.WithCorrelationId(requestID), requestID: requestID}
}

func (rl *RequestLogger) Info() arbor.ILogEvent  { return rl.logger.Info() }
func (rl *RequestLogger) Warn() arbor.ILogEvent  { return rl.logger.Warn() }
func (rl *RequestLogger) Error() arbor.ILogEvent { return rl.logger.Error() }
func (rl *RequestLogger) Debug() arbor.ILogEvent { return rl.logger.Debug() }

// LogBatchStart logs the start of one batch-of-BATCH_SIZE processing round.
func (rl *RequestLogger) LogBatchStart(batchSize int, pendingTotal int) {
	rl.Info().
		Str("request_id", rl.requestID).
		Int("batch_size", batchSize).
		Int("pending_total", pendingTotal).
		Msg("Batch started")
}

// LogBatchComplete logs a batch's completion and how long it took.
func (rl *RequestLogger) LogBatchComplete(duration time.Duration, resolved int, observed int) {
	rl.Info().
		Str("request_id", rl.requestID).
		Float64("duration_sec", duration.Seconds()).
		Int("resolved", resolved).
		Int("observed", observed).
		Msg("Batch completed")
}

// LogResourceError logs a per-resource failure that does not abort the
// whole request (resolve/observe errors route to ResourceError/ObservationError
// in the final bundle, per §7).
func (rl *RequestLogger) LogResourceError(resourceURI string, err error) {
	rl.Warn().
		Str("request_id", rl.requestID).
		Str("resource_uri", resourceURI).
		Str("error", err.Error()).
		Msg("Resource error")
}

// GetRequestID returns the request's correlation ID.
func (rl *RequestLogger) GetRequestID() string {
	return rl.requestID
}
