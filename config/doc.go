// Package config loads engine configuration from YAML files and keeps a
// running engine in sync with them.
//
// Load and Parse start from DefaultConfig, so a file only needs the keys it
// changes. Levels and overflow policies are written by name, durations in
// time.ParseDuration syntax.
//
// Watcher observes the file with fsnotify and, after a short debounce,
// passes each valid new version to a callback, typically one that calls
// Apply. Only the minimum severity and the output can change while an
// engine runs; the rest needs a new engine.
package config
