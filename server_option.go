package calcrpc

import "time"

const (
	defaultHandlerTimeout = 5 * time.Second
)

type serverOptions struct {
	logResponse     bool
	name            string
	workerNum       int
	handlerTimeout  time.Duration
	limiterEnabled  bool
	limiterDuration time.Duration
	limiterCount    int
	limiterReject   bool
}

// ServerOption is a functional option for configuring the server.
type ServerOption func(o *serverOptions)

// WithServerName sets the name reported in the "name" metrics label.
func WithServerName(name string) ServerOption {
	return func(o *serverOptions) {
		o.name = name
	}
}

// WithLogResponse enables one log line per response with its status and duration.
func WithLogResponse(logResponse bool) ServerOption {
	return func(o *serverOptions) {
		o.logResponse = logResponse
	}
}

// WithLimiter enables the rate limiter: one token every d, with a burst of count.
// The limiter is disabled unless this option is given.
func WithLimiter(d time.Duration, count int) ServerOption {
	return func(o *serverOptions) {
		o.limiterEnabled = true
		o.limiterDuration = d
		o.limiterCount = count
	}
}

// WithLimiterReject makes the server answer 429 when the limiter has no token.
// This is the default.
func WithLimiterReject() ServerOption {
	return func(o *serverOptions) {
		o.limiterReject = true
	}
}

// WithLimiterWait makes the server wait for a limiter token until the request
// context is done.
func WithLimiterWait() ServerOption {
	return func(o *serverOptions) {
		o.limiterReject = false
	}
}

// WithWorkerNum sets the size of the worker pool handlers run on.
func WithWorkerNum(count int) ServerOption {
	return func(o *serverOptions) {
		o.workerNum = count
	}
}

// WithHandlerTimeout sets the timeout used for handlers registered without one.
func WithHandlerTimeout(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.handlerTimeout = d
	}
}
