// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no mediaorg-specific dependencies and could be extracted
// as a standalone library.
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns a parsed Result
//   - Prober.Duration: reports a media file's runtime in seconds
package ffprobe
