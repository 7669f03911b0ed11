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

import "hash/fnv"

// BloomFilter is a probabilistic set used to reject static paths that
// definitely aren't registered before paying for a map lookup.
//
//   - "definitely not in the set" is always correct
//   - "possibly in the set" may be a false positive, so a map lookup still
//     follows every positive test
//
// Implemented with FNV-1a and a handful of XOR-seeded derived hashes rather
// than independent hash functions, which is cheap enough to recompute per
// request.
type BloomFilter struct {
	bits  []uint64
	size  uint64
	seeds []uint64
}

// NewBloomFilter allocates a filter sized for roughly `size` bits and
// `numHashFuncs` probes per test/add.
func NewBloomFilter(size uint64, numHashFuncs int) *BloomFilter {
	bf := &BloomFilter{
		bits:  make([]uint64, (size+63)/64),
		size:  size,
		seeds: make([]uint64, numHashFuncs),
	}
	for i := 0; i < numHashFuncs; i++ {
		bf.seeds[i] = uint64(i + 1)
	}
	return bf
}

func (bf *BloomFilter) hashWithSeed(baseHash, seed uint64) uint64 {
	return (baseHash ^ seed) % bf.size
}

// Add records data as a member of the set.
func (bf *BloomFilter) Add(data []byte) {
	h := fnv.New64a()
	h.Write(data)
	baseHash := h.Sum64()

	for _, seed := range bf.seeds {
		pos := bf.hashWithSeed(baseHash, seed)
		bf.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Test reports whether data might be a member; false is authoritative.
func (bf *BloomFilter) Test(data []byte) bool {
	h := fnv.New64a()
	h.Write(data)
	baseHash := h.Sum64()

	for _, seed := range bf.seeds {
		pos := bf.hashWithSeed(baseHash, seed)
		if bf.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}
