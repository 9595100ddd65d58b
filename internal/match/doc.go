// Package match assigns discovered files to canonical episodes.
//
// Season resolution runs first: folder hints beat filename hints, files with
// neither default to season 1 with a warning, and disagreement between the
// two is surfaced as a conflict for the caller to mediate. The engine then
// scores each file against its season's canonical list by blending a
// name-match factor with a duration-similarity factor into a confidence in
// [0, 100]. Multi-episode filenames produce one result spanning the range,
// ties become conflicts for every claimant, and files below the confidence
// floor come back explicitly unmatched. No file is ever dropped.
package match
