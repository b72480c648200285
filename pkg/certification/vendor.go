/*
 * Copyright 2024 Canonical Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package certification implements the certification-status decision
// pipeline over the hardware corpus.
package certification

import "strings"

// NormalizeVendorName strips "Inc."/"Inc" and surrounding whitespace so
// vendor lookups tolerate incorporation suffixes. The "Inc." form must be
// removed first, otherwise a bare dot is left behind.
func NormalizeVendorName(name string) string {
	name = strings.ReplaceAll(name, "Inc.", "")
	name = strings.ReplaceAll(name, "Inc", "")

	return strings.TrimSpace(name)
}
