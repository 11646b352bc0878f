// Package logging configures slog output for curacast and publishes every
// record to an in-process event hub so interested sinks (history, tests)
// receive structured copies of the stream.
package logging
