// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeUnsupportedOS indicates the host OS family is not supported.
	// Detected before any host mutation so re-runs remain safe.
	ErrCodeUnsupportedOS ErrorCode = "UNSUPPORTED_OS"
	// ErrCodeUnsupportedProvider indicates an unrecognized driver provider.
	ErrCodeUnsupportedProvider ErrorCode = "UNSUPPORTED_PROVIDER"
	// ErrCodeTransient indicates a failure expected to clear on retry,
	// such as a package index refresh hitting a network error.
	ErrCodeTransient ErrorCode = "TRANSIENT"
	// ErrCodeExhaustedRetry indicates a retried operation failed on every
	// attempt allowed by its policy. Fatal to the run.
	ErrCodeExhaustedRetry ErrorCode = "EXHAUSTED_RETRY"
	// ErrCodeAgentDeploy indicates metrics agent deployment failed. Fatal
	// to the agent only; never unwinds a completed driver install.
	ErrCodeAgentDeploy ErrorCode = "AGENT_DEPLOY"
	// ErrCodeInvalidConfig indicates malformed resolved configuration.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better
// observability. It includes an error code for programmatic handling, a
// human-readable message, the underlying cause, and optional context
// for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrCodeInternal when
// err is not a StructuredError.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given ErrorCode.
func IsCode(err error, code ErrorCode) bool {
	var se *StructuredError
	return errors.As(err, &se) && se.Code == code
}
