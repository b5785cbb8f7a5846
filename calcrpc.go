// Package calcrpc is the transport-agnostic request dispatch core shared by the
// gRPC and MQTT transports of the calculator service.
package calcrpc

import "github.com/prometheus/client_golang/prometheus"

// RPCServer is implemented by every transport that serves handlers registered
// on the core Server.
type RPCServer interface {
	Close() error
	IsConnected() bool
	Register(method string, hdl *Handler)
	RegisterMetrics(responseTime *prometheus.HistogramVec, errorCount *prometheus.CounterVec)
}
