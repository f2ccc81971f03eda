// Package config loads, normalizes, and validates Folio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives dependent locations such as the
// backup directory and the transfer ledger path. Structural problems like a
// missing scan folder or a malformed city code are reported as configuration
// errors and must be resolved before the pipeline starts.
package config
