/*
Package httpmetrics wraps an [httpcache.Cache] with Prometheus counters
and a histogram, recording outcomes for ConstructResponse, Store and
Invalidate, and the Complete/Cancel calls of a stored body's Handle,
without changing any of their semantics. Refresh, Clear, Keys and
Entries pass through to the wrapped cache unrecorded.

Example usage:

	cache := httpcache.NewCache()
	metered := httpmetrics.Wrap(cache, "", prometheus.DefaultRegisterer)
	transport := httpcache.NewTransport(http.DefaultTransport, httpcache.WithCache(metered.Cache))

A transport built this way calls the embedded *httpcache.Cache directly,
so its lookups and stores are not recorded; only calls made through
metered are.
*/
package httpmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/relayhouse/httpcache"
)

// Result label values for httpcache_constructs_total.
const (
	resultHit             = "hit"
	resultMiss            = "miss"
	resultNeedsValidation = "needs_validation"
)

// Cache wraps an *httpcache.Cache, recording metrics around every call
// while delegating the actual work unchanged.
type Cache struct {
	*httpcache.Cache

	constructs       *prometheus.CounterVec
	stores           prometheus.Counter
	invalidations    prometheus.Counter
	waitersWoken     *prometheus.CounterVec
	rangeResolveTime prometheus.Histogram
}

// Wrap instruments core with Prometheus metrics registered against reg
// (prometheus.DefaultRegisterer if nil), under the "httpcache" namespace
// and the given subsystem (may be empty).
func Wrap(core *httpcache.Cache, subsystem string, reg prometheus.Registerer) *Cache {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Cache{
		Cache: core,
		constructs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpcache",
			Subsystem: subsystem,
			Name:      "constructs_total",
			Help:      "Total number of ConstructResponse calls by result.",
		}, []string{"result"}),
		stores: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "httpcache",
			Subsystem: subsystem,
			Name:      "stores_total",
			Help:      "Total number of entries admitted by Store.",
		}),
		invalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "httpcache",
			Subsystem: subsystem,
			Name:      "invalidations_total",
			Help:      "Total number of keys removed by Invalidate.",
		}),
		waitersWoken: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "httpcache",
			Subsystem: subsystem,
			Name:      "waiters_woken_total",
			Help:      "Total number of waiter wakes, by terminal signal.",
		}, []string{"signal"}),
		rangeResolveTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "httpcache",
			Subsystem: subsystem,
			Name:      "range_resolve_duration_seconds",
			Help:      "Latency of ConstructResponse calls that resolved a Range request locally.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ConstructResponse records which of hit/miss/needs_validation the
// lookup produced, and observes range-resolution latency when the
// request carried a satisfiable Range header.
func (c *Cache) ConstructResponse(req *http.Request) httpcache.Lookup {
	start := time.Now()
	lookup := c.Cache.ConstructResponse(req)

	result := resultMiss
	switch {
	case lookup.Found && lookup.NeedsValidation:
		result = resultNeedsValidation
	case lookup.Found:
		result = resultHit
	}
	c.constructs.WithLabelValues(result).Inc()

	if lookup.Range != nil {
		c.rangeResolveTime.Observe(time.Since(start).Seconds())
	}
	return lookup
}

// Handle wraps an *httpcache.Handle so Complete/Cancel are counted as
// waiter wakes alongside doing the real work.
type Handle struct {
	*httpcache.Handle
	woken *prometheus.CounterVec
}

// Complete marks the body done and records a "done" waiter wake.
func (h *Handle) Complete() {
	h.Handle.Complete()
	h.woken.WithLabelValues("done").Inc()
}

// Cancel marks the body aborted and records a "cancelled" waiter wake.
func (h *Handle) Cancel() {
	h.Handle.Cancel()
	h.woken.WithLabelValues("cancelled").Inc()
}

// Store records an admitted entry and wraps the returned Handle so its
// Complete/Cancel calls are counted as waiter wakes.
func (c *Cache) Store(req *http.Request, resp *http.Response) *Handle {
	handle := c.Cache.Store(req, resp)
	if handle == nil {
		return nil
	}
	c.stores.Inc()
	return &Handle{Handle: handle, woken: c.waitersWoken}
}

// Invalidate adds to the invalidation counter the number of stored keys
// the call removed.
func (c *Cache) Invalidate(req *http.Request, resp *http.Response) {
	before := len(c.Cache.Keys())
	c.Cache.Invalidate(req, resp)
	after := len(c.Cache.Keys())
	if after < before {
		c.invalidations.Add(float64(before - after))
	}
}
