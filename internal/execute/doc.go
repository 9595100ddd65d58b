// Package execute applies approved action plans.
//
// Actions run strictly in plan order, one at a time. Every transition —
// pending, applied, skipped, failed, and each compensation — is appended to a
// durable JSONL action log before the transition is considered complete.
// Dry-run mode moves every action straight to skipped with a "would have"
// annotation and touches nothing.
//
// On failure the default policy walks the already-applied prefix in reverse
// with best-effort compensating actions (move back, remove copies and
// metadata files, remove directories this run created); the alternative skip
// policy records the failure per-action and continues. A live run holds an
// exclusive lock on the library root and free space is checked before any
// copy-mode run mutates the filesystem.
package execute
