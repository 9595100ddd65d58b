// Package plan turns confirmed assignments into an ordered, conflict-checked
// ActionPlan.
//
// Plans are topologically valid — a destination's parent directory is always
// created by an earlier action or already exists — and every destination is
// checked both against the filesystem (read-only) and against the other
// destinations in the same plan. Metadata-file actions are appended after the
// media move for the same unit so a partial execution never leaves a metadata
// file without its media. The planner itself never mutates the filesystem.
package plan
