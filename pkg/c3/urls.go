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

package c3

import "fmt"

// DefaultBaseURL is the production upstream certification API.
const DefaultBaseURL = "https://certification.canonical.com"

func cpuIDsURL(base string) string {
	return base + "/api/v2/cpuids/"
}

// limit=0 asks the upstream for its largest page size.
func certificatesURL(base string) string {
	return fmt.Sprintf("%s/api/v2/public-certificates/?pagination=limitoffset&limit=%d", base, 0)
}

func deviceInstancesURL(base string, limit int) string {
	return fmt.Sprintf("%s/api/v2/public-device-instances/?pagination=limitoffset&limit=%d", base, limit)
}
