// Package metadata defines the canonical show, movie, and episode records the
// matching pipeline consumes, plus the provider contract that supplies them.
// Network clients implementing Provider live outside this module.
package metadata
