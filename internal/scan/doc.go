// Package scan discovers input files for adoption, classifies their role
// (video, subtitle, extra, sample), attaches parsed numbering hints, and
// probes durations through a caller-supplied probe function with a bounded
// worker pool. Probe results are keyed by path so arrival order never
// influences matching.
package scan
