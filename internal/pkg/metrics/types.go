package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry defines the interface for metrics collection
type Registry interface {
	// HTTP Metrics
	RecordHTTPRequest(method, path, statusCode string, duration float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()

	// Business Metrics
	IncURLsCreated()
	IncURLsResolved()
	RecordShorten(status string)
	RecordIndexLookup(operation, cacheStatus string)
	IncCodeCollisions()

	// Prometheus-specific methods
	GetRegistry() *prometheus.Registry
	GetHandler() http.Handler
}

// NoOpRegistry provides a no-op implementation for when metrics are disabled
type NoOpRegistry struct{}

func NewNoOpRegistry() Registry {
	return &NoOpRegistry{}
}

func (n *NoOpRegistry) RecordHTTPRequest(method, path, statusCode string, duration float64) {}
func (n *NoOpRegistry) IncHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) DecHTTPRequestsInFlight()                                            {}
func (n *NoOpRegistry) IncURLsCreated()                                                     {}
func (n *NoOpRegistry) IncURLsResolved()                                                    {}
func (n *NoOpRegistry) RecordShorten(status string)                                         {}
func (n *NoOpRegistry) RecordIndexLookup(operation, cacheStatus string)                     {}
func (n *NoOpRegistry) IncCodeCollisions()                                                  {}
func (n *NoOpRegistry) GetRegistry() *prometheus.Registry                                   { return nil }
func (n *NoOpRegistry) GetHandler() http.Handler                                            { return nil }

// Common label names as constants
const (
	LabelMethod      = "method"
	LabelPath        = "path"
	LabelStatusCode  = "status_code"
	LabelOperation   = "operation"
	LabelStatus      = "status"
	LabelCacheStatus = "cache_status"
)

// Label values for shorten outcomes
const (
	ShortenCreated  = "created"
	ShortenExisting = "existing"
	ShortenInvalid  = "invalid"
	ShortenFailed   = "error"
)

// Label values for index lookups
const (
	OperationByOriginal = "by_original"
	OperationByCode     = "by_code"

	CacheStatusLocal  = "local"
	CacheStatusShared = "shared"
	CacheStatusStore  = "store"
	CacheStatusMiss   = "miss"
)
