package calcrpc

import (
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xizhibei/go-calc-rpc/telemetry"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var (
	// ErrNoReply is returned to the caller when a handler finished without replying.
	ErrNoReply = errors.New("[CALC] empty reply")

	// ErrTooFrequently is returned when the limiter rejects a request.
	ErrTooFrequently = errors.New("[CALC] too frequently, try again later")

	// ErrTimeout is returned when a request did not finish in time.
	ErrTimeout = errors.New("[CALC] timeout")

	// ErrUnknownMethod is returned for methods without a registered handler.
	ErrUnknownMethod = errors.New("[CALC] unknown method")
)

// Server dispatches requests from any transport to registered handlers.
type Server struct {
	log        *zap.SugaredLogger
	handlerMap map[string]*Handler
	handlerMu  sync.RWMutex

	cbList       []OnAfterResponseCallback
	afterResPool sync.Pool

	options    *serverOptions
	workerPool *tunny.Pool
	limiter    *rate.Limiter
	telemetry  telemetry.Telemetry
}

// NewServer creates a Server. Without options it runs runtime.NumCPU workers,
// a 5s handler timeout and no limiter.
func NewServer(options ...ServerOption) *Server {
	o := serverOptions{
		name:            uuid.New().String(),
		logResponse:     false,
		workerNum:       runtime.NumCPU(),
		handlerTimeout:  defaultHandlerTimeout,
		limiterDuration: time.Second,
		limiterCount:    5,
		limiterReject:   true,
	}

	for _, option := range options {
		option(&o)
	}

	if o.workerNum <= 0 {
		o.workerNum = runtime.NumCPU()
	}
	if o.handlerTimeout <= 0 {
		o.handlerTimeout = defaultHandlerTimeout
	}

	tel, _ := telemetry.NewNoop()

	server := Server{
		log:        zap.S().With("module", "calcrpc.server"),
		handlerMap: make(map[string]*Handler),
		options:    &o,

		afterResPool: sync.Pool{
			New: func() interface{} {
				return new(AfterResponseEvent)
			},
		},
		workerPool: tunny.NewCallback(o.workerNum),
		telemetry:  tel,
	}

	if o.limiterEnabled {
		server.limiter = rate.NewLimiter(rate.Every(o.limiterDuration), o.limiterCount)
	}

	return &server
}

// Name returns the server name used in metrics labels.
func (s *Server) Name() string {
	return s.options.name
}

// SetTelemetry sets the telemetry used to trace and measure each call.
func (s *Server) SetTelemetry(tel telemetry.Telemetry) {
	s.telemetry = tel
}

// Register binds hdl to method. Registering a method twice overrides the
// previous handler.
func (s *Server) Register(method string, hdl *Handler) {
	s.handlerMu.Lock()
	defer s.handlerMu.Unlock()

	if _, ok := s.handlerMap[method]; ok {
		s.log.Warnf("Method %s already registered, will override", method)
	}

	s.handlerMap[method] = hdl
	s.log.Debugf("Method %s registered", method)
}

func (s *Server) handler(method string) (*Handler, bool) {
	s.handlerMu.RLock()
	defer s.handlerMu.RUnlock()
	hdl, ok := s.handlerMap[method]
	return hdl, ok
}

// Call runs the handler of c.Method() on the worker pool and blocks until the
// request is replied to. Every path through Call leaves a response on c.
func (s *Server) Call(c Context) {
	start := time.Now()
	ctx, span := s.telemetry.StartSpan(c.Ctx(), "CalcRPC.Server.Call "+c.Method(),
		trace.WithSpanKind(trace.SpanKindServer))

	defer func() {
		duration := time.Since(start)

		res := c.GetResponse()
		status := 0
		var resErr error
		if res != nil {
			status = res.Status
			resErr = res.Error
		}

		s.telemetry.RecordRequest(ctx, duration, c.Method(), strconv.Itoa(status), resErr)
		if resErr != nil {
			span.RecordError(resErr)
			span.SetStatus(otelcodes.Error, resErr.Error())
		}
		span.End()

		if s.options.logResponse {
			s.log.Infof("Response to %s [%d] (%v)", c.ReplyDesc(), status, duration.Round(time.Microsecond))
		}

		evt := s.afterResPool.Get().(*AfterResponseEvent)
		evt.Labels = c.PrometheusLabels()
		evt.Duration = duration
		evt.Res = res
		s.emitAfterResponse(evt)
	}()

	if err := c.Ctx().Err(); err != nil {
		c.ReplyError(RPCStatusRequestTimeout, errors.WithSecondaryError(ErrTimeout, err))
		return
	}

	if s.limiter != nil {
		if s.options.limiterReject {
			if !s.limiter.Allow() {
				c.ReplyError(RPCStatusTooManyRequests, ErrTooFrequently)
				return
			}
		} else if err := s.limiter.Wait(c.Ctx()); err != nil {
			c.ReplyError(RPCStatusRequestTimeout, ErrTimeout)
			return
		}
	}

	hdl, ok := s.handler(c.Method())
	if !ok {
		c.ReplyError(RPCStatusNotFound, errors.Wrapf(ErrUnknownMethod, "%s", c.Method()))
		return
	}

	timeout := hdl.Timeout
	if timeout <= 0 {
		timeout = s.options.handlerTimeout
	}

	_, err := s.workerPool.ProcessTimed(func() {
		defer func() {
			if i := recover(); i != nil {
				err := errors.Newf("panic in method %s %v", c.Method(), i)
				s.log.Desugar().WithOptions(zap.AddStacktrace(zapcore.ErrorLevel)).Sugar().Error(err)
				c.ReplyError(RPCStatusServerError, err)
			}
		}()

		hdl.Method(c)

		// A successful reply here means the handler returned without replying.
		if c.ReplyError(RPCStatusServerError, ErrNoReply) {
			s.log.Warnf("Method %s no reply", c.Method())
		}
	}, timeout)

	if errors.Is(err, tunny.ErrJobTimedOut) {
		c.ReplyError(RPCStatusRequestTimeout, ErrTimeout)
	} else if err != nil {
		c.ReplyError(RPCStatusServerError, err)
	}
}

// Close stops the worker pool. Calls made after Close fail with status 500.
func (s *Server) Close() error {
	s.workerPool.Close()
	return nil
}

// AfterResponseEvent describes one finished request.
type AfterResponseEvent struct {
	Labels   prometheus.Labels
	Duration time.Duration
	Res      *Response
}

// OnAfterResponseCallback is called once per finished request. The event is
// recycled after the callbacks return and must not be retained.
type OnAfterResponseCallback func(e *AfterResponseEvent)

// OnAfterResponse adds cb to the callbacks run after every request.
func (s *Server) OnAfterResponse(cb OnAfterResponseCallback) {
	s.cbList = append(s.cbList, cb)
}

func (s *Server) emitAfterResponse(e *AfterResponseEvent) {
	for _, cb := range s.cbList {
		cb(e)
	}
	e.Labels = nil
	e.Res = nil
	s.afterResPool.Put(e)
}

// RegisterMetrics observes each request duration in responseTime, labelled by
// method, name and status, and counts failed requests in errorCount with an
// additional message label. Either may be nil.
func (s *Server) RegisterMetrics(responseTime *prometheus.HistogramVec, errorCount *prometheus.CounterVec) {
	s.OnAfterResponse(func(e *AfterResponseEvent) {
		status := "0"
		if e.Res != nil {
			status = strconv.Itoa(e.Res.Status)
		}

		labels := prometheus.Labels{}
		for k, v := range e.Labels {
			labels[k] = v
		}
		labels["name"] = s.options.name
		labels["status"] = status

		if responseTime != nil {
			responseTime.
				With(labels).
				Observe(e.Duration.Seconds())
		}

		if e.Res != nil && e.Res.Error != nil && errorCount != nil {
			labels["message"] = e.Res.Error.Error()
			errorCount.
				With(labels).
				Inc()
		}
	})
}

// NewMetrics returns the collectors RegisterMetrics expects, using the label
// names the server fills in.
func NewMetrics(namespace string) (*prometheus.HistogramVec, *prometheus.CounterVec) {
	responseTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "response_time_seconds",
		Help:      "Time spent serving calculator requests.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"method", "name", "status"})

	errorCount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Number of failed calculator requests.",
	}, []string{"method", "name", "status", "message"})

	return responseTime, errorCount
}
