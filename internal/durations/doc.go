// Package durations turns the difference between a probed file duration and
// an expected episode runtime into a tiered similarity weight. Tolerances come
// from configuration so tests can assert exact confidence outputs.
package durations
