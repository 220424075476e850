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
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlphanumCompare(t *testing.T) {
	names := []string{"engine-10", "random", "engine-9", "engine", "first", "engine-9a"}
	slices.SortFunc(names, AlphanumCompare)

	assert.Equal(t, []string{"engine", "engine-9", "engine-9a", "engine-10", "first", "random"}, names)
	assert.Zero(t, AlphanumCompare("v1.2", "v1.2"))
	assert.Equal(t, -1, AlphanumCompare("v1.2", "v1.10"))
}
