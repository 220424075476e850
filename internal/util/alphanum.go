// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"cmp"
	"regexp"
	"strconv"
)

var chunkifyRegexp = regexp.MustCompile(`(\d+|\D+)`)

// AlphanumCompare compares two strings in natural order, so that engine-9
// sorts before engine-10. It returns -1, 0 or +1 like cmp.Compare.
func AlphanumCompare(a, b string) int {
	chunksA := chunkifyRegexp.FindAllString(a, -1)
	chunksB := chunkifyRegexp.FindAllString(b, -1)

	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		aInt, aErr := strconv.Atoi(chunksA[i])
		bInt, bErr := strconv.Atoi(chunksB[i])

		var c int
		if aErr == nil && bErr == nil {
			// numeric chunks compare by value
			c = cmp.Compare(aInt, bInt)
		} else {
			c = cmp.Compare(chunksA[i], chunksB[i])
		}

		if c != 0 {
			return c
		}
	}

	return cmp.Compare(len(chunksA), len(chunksB))
}
