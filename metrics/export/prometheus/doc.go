// Package prometheus renders engine counters in the Prometheus text
// exposition format without depending on the Prometheus client library.
package prometheus
