// Package logging builds the slog loggers used across the daemon and CLI.
//
// Two formats are supported: a single-line console rendering with the
// component lifted into the line prefix (colored only when the destination is
// a TTY) and plain JSON for machine consumption. Attr helpers keep call sites
// terse and NewComponentLogger standardizes the component attribute every
// pipeline piece logs under.
package logging
