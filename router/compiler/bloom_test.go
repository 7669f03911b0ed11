// Copyright 2025 The Velox Authors
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

package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1024, 4)
	members := []string{"/health", "/users", "/orders", "/widgets/1"}
	for _, m := range members {
		bf.Add([]byte(m))
	}
	for _, m := range members {
		assert.True(t, bf.Test([]byte(m)), "member %q must always test positive", m)
	}
}

func TestBloomFilterRejectsObviousNonMembers(t *testing.T) {
	bf := NewBloomFilter(4096, 4)
	bf.Add([]byte("/health"))

	assert.False(t, bf.Test([]byte("/definitely-not-registered")))
}

func TestBloomFilterLowFalsePositiveRateAtReasonableLoad(t *testing.T) {
	bf := NewBloomFilter(8192, 4)
	for i := 0; i < 100; i++ {
		bf.Add([]byte(fmt.Sprintf("/route-%d", i)))
	}

	falsePositives := 0
	for i := 100; i < 1100; i++ {
		if bf.Test([]byte(fmt.Sprintf("/route-%d", i))) {
			falsePositives++
		}
	}
	assert.Less(t, falsePositives, 50, "false positive rate should stay well under 5%% at this load factor")
}
