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


// Package provider defines the external capability contracts consumed by the
// orchestration core: search providers and rerankers.
//
// The core never talks to a provider's wire protocol directly. Concrete
// adapters live in subpackages (openai for embedding-based reranking,
// jsonfile for file-backed result sets, mock for tests) and are injected at
// session construction. Provider failures are caught where they occur and
// degrade to empty batches or fallback ordering; they never abort a session.
//
// RetryWithBackoff is the shared retry discipline for all fallible external
// calls.
package provider
