package constant

const (
	ContextKeyRequestID = "requestid"

	RequestIDHeader = "X-Gateway-Request-ID"

	IdempotencyHeader    = "X-Gateway-Idempotency"
	IdempotencyKeyHeader = "X-Gateway-Idempotency-Key"

	IdempotencyKeyLengthLimit = 128

	// SlimHeaderKey marks probe requests that Sentry transaction tracing should skip.
	SlimHeaderKey = "X-Slim"
)
