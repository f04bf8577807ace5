// Package errors provides structured error types for better observability
// and programmatic error handling across the provisioner.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeExhaustedRetry,
//	    "failed to install driver packages",
//	    cause,
//	    map[string]interface{}{
//	        "step":     "apt-get install",
//	        "attempts": policy.MaxAttempts,
//	    },
//	)
package errors
