// Copyright 2025 Poiesic Systems
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


package provider

import "errors"

var (
	// ErrProviderFailed indicates an external search or rerank call failed.
	// It is always caught at the boundary where it occurs and converted
	// into a degraded-but-valid result.
	ErrProviderFailed = errors.New("provider call failed")

	// ErrInvalidMaxAttempts is returned when RetryWithBackoff is called
	// with a non-positive attempt budget.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)
