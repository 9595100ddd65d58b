// Package config loads, normalizes, and validates mediaorg's TOML
// configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/mediaorg/config.toml, then ./mediaorg.toml, falling back to
// built-in defaults when no file exists. All path fields are tilde-expanded
// and made absolute during normalization.
//
// The matching section deliberately exposes the duration tolerances and
// confidence weights the match engine uses; tests assert exact confidence
// outputs against these values.
package config
