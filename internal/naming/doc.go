// Package naming implements the filename and folder-name grammar used to
// derive numbering hints from arbitrary media paths.
//
// The grammar is a declarative table of ordered pattern rules evaluated in
// priority order: multi-episode chains, single season/episode tokens, air
// dates, then absolute numbering. Each rule carries the compatibility
// constraints of the ruleset it reproduces — season numbers inside
// [200, 1927] or above 2500 are rejected as resolution-token false positives,
// and ending episode numbers matching common vertical resolutions invalidate
// the multi-episode reading.
//
// The package also provides the season-folder grammar ("Season ##" long form
// plus specials aliases, never "S##"), whole-word sample detection, and
// filesystem-name sanitization. Everything here is a pure function of its
// input string.
package naming
