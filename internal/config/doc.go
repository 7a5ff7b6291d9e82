// Package config provides the run configuration for cubegrab: defaults,
// validation, the optional YAML file with per-host request settings, and
// the XDG directories used for the store.
package config
