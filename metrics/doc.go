// Package metrics exports record codec activity to Prometheus.
//
//	record.SetObserver(metrics.New(prometheus.DefaultRegisterer))
//
// Counters are labelled by record name, operation and result, where a
// failed operation's result is its error kind (size_mismatch,
// value_mismatch and so on).
package metrics
