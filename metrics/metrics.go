package metrics

import (
	goerrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record"
)

const namespace = "cstruct"

// Collector records codec activity as Prometheus metrics. It implements
// record.Observer; install it with record.SetObserver.
type Collector struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	bytes       *prometheus.CounterVec
	validations *prometheus.CounterVec
}

var _ record.Observer = (*Collector)(nil)

// New registers the collector's metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Collector{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Record compile, decode and encode operations by result.",
		}, []string{"record", "op", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent per record operation.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
		}, []string{"op"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Bytes decoded from or encoded into buffers.",
		}, []string{"record", "op"}),
		validations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validator hook outcomes.",
		}, []string{"record", "result"}),
	}
}

func (c *Collector) ObserveCompile(name string, d time.Duration, err error) {
	c.observe(name, "compile", 0, d, err)
}

func (c *Collector) ObserveDecode(name string, n int, d time.Duration, err error) {
	c.observe(name, "decode", n, d, err)
}

func (c *Collector) ObserveEncode(name string, n int, d time.Duration, err error) {
	c.observe(name, "encode", n, d, err)
}

func (c *Collector) ObserveValidation(name string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	c.validations.WithLabelValues(name, result).Inc()
}

func (c *Collector) observe(name, op string, n int, d time.Duration, err error) {
	c.operations.WithLabelValues(name, op, result(err)).Inc()
	c.duration.WithLabelValues(op).Observe(d.Seconds())
	if err == nil && n > 0 {
		c.bytes.WithLabelValues(name, op).Add(float64(n))
	}
}

// result labels an outcome with the error kind, or "ok".
func result(err error) string {
	if err == nil {
		return "ok"
	}
	var e *errors.Error
	if goerrors.As(err, &e) {
		return string(e.Kind)
	}
	return "error"
}
