// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package aggregate turns raw provider result batches into a single ranked,
// deduplicated list. The pipeline runs five phases in order: tagging and
// flattening, exact-URL dedup with field merging, near-duplicate content
// clustering, relevance reranking (with a deterministic fallback ordering),
// and topic extraction.
//
// The pipeline never fails as a whole. Missing providers, unparseable dates,
// and rerank outages degrade the output but always leave a usable ranked
// list.
package aggregate
