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

package certification

import "fmt"

// cpuidSignificantBytes is how many leading bytes of the CPUID leaf carry
// the family/model/stepping signature.
const cpuidSignificantBytes = 3

// DecodeCPUID renders the first three bytes of a CPUID leaf as the lowercase
// hex string the CPU-ID dictionary is keyed on: byte 2 is the high part,
// byte 0 the low. [0x71, 0x06, 0x0B] encodes to "0xb0671".
func DecodeCPUID(identifier []int) string {
	b0 := identifier[0] & 0xFF
	b1 := identifier[1] & 0xFF
	b2 := identifier[2] & 0xFF

	return fmt.Sprintf("0x%x%02x%02x", b2, b1, b0)
}
