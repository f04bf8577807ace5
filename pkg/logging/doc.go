// Package logging provides structured logging utilities for the GPU
// provisioner.
//
// It wraps the standard library slog package with project defaults: JSON
// output to stderr, module/version context on every record, LOG_LEVEL
// environment configuration, and source location tracking for debug logs.
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("gpuprov", "v1.0.0")
//
//	    slog.Info("provisioning started", "id", runID)
//	    slog.Error("step failed", "error", err)
//	}
//
// Supported log levels (case-insensitive): DEBUG, INFO (default),
// WARN/WARNING, ERROR. The LOG_LEVEL environment variable controls
// verbosity when no explicit level is passed:
//
//	LOG_LEVEL=debug gpuprov install
package logging
