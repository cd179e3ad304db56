// Package config loads the project configuration of marech.
//
// A configuration is read from a TOML or YAML file (marech.toml, marech.yaml,
// marech.yml or .marech.toml when a directory is given) and layered over
// the built-in defaults. Environment variables prefixed with MARECH_ and
// explicit overrides are applied last. Nested keys in environment variables
// are separated with a double underscore:
//
//	MARECH_PRESETS__HTML_MINIFY__ENABLED=true
//
// Loading never caches: every call re-reads and re-validates the file.
package config
