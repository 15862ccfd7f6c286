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

// Package stream normalizes internal session events into the client-facing
// update protocol: one JSON object per line, each carrying a small phase
// number, an update type, and a payload. A static table maps internal step
// identifiers to phase numbers and descriptions; the throttled writer
// guarantees a minimum interval between updates while preserving emission
// order.
package stream
