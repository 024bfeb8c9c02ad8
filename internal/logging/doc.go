// Package logging builds the slog loggers used across Marquee. It provides
// a console handler (key=value lines suited to a terminal), a JSON handler
// for machine consumption, typed attribute helpers, and the standardized
// field keys shared by the daemon and the curator pipeline.
package logging
