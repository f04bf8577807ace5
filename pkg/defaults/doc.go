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

// Package defaults provides centralized configuration constants for the
// GPU provisioner.
//
// This package defines the retry policy, network timeouts, pinned
// artifact URLs, and generated artifact paths used across the codebase.
// Centralizing these values ensures consistency and makes tuning easier.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/NVIDIA/gpu-provisioner/pkg/defaults"
//
//	policy := retry.Policy{
//	    MaxAttempts: defaults.RetryMaxAttempts,
//	    Delay:       defaults.RetryDelay,
//	}
//
// # Guidelines
//
// When choosing values:
//
//   - Command retry: 10 attempts at a fixed 5s delay, absorbing
//     transient package index and mirror errors
//   - Downloads: 4 attempts at 5s, 2m per-request timeout
//   - Metadata lookups: 5s, never fatal
package defaults
