// Package config loads the legislature catalog and runtime settings.
//
// The catalog is YAML. A default copy is embedded in the binary; a file
// passed with --config replaces the settings it names and, when it lists
// sources, the whole source list. Environment variables prefixed with
// LEGISLATOR_AGES_ are applied last and may come from a .env file.
package config
