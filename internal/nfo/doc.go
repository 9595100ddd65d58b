// Package nfo renders Jellyfin-compatible NFO sidecar documents for shows,
// episodes, and movies. Output is deterministic: provider IDs are emitted in
// sorted order so repeated plans produce identical content.
package nfo
