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

package aggregate

import "strings"

// NormalizeURL reduces a URL to a canonical dedup key: lowercase, no scheme,
// no leading "www.", no query or fragment, no trailing slash. It is a string
// transform, not a parser, so malformed URLs still normalize to something
// stable.
func NormalizeURL(raw string) string {
	url := strings.ToLower(strings.TrimSpace(raw))

	if idx := strings.IndexAny(url, "?#"); idx >= 0 {
		url = url[:idx]
	}
	if idx := strings.Index(url, "://"); idx >= 0 {
		url = url[idx+3:]
	}
	url = strings.TrimPrefix(url, "www.")
	url = strings.TrimRight(url, "/")

	return url
}
