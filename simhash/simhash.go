package simhash

import (
	"hash/fnv"
	"math/bits"
	"strings"
)

// Hash computes a 64-bit SimHash over a sequence of features.
// Each feature is hashed with FNV-64a and votes on every bit; repeated
// features vote repeatedly.
func Hash(features []string) uint64 {
	if len(features) == 0 {
		return 0
	}

	var vector [64]int
	h := fnv.New64a()
	for _, f := range features {
		h.Reset()
		h.Write([]byte(f))
		sum := h.Sum64()
		for i := 0; i < 64; i++ {
			if sum&(1<<uint(i)) != 0 {
				vector[i]++
			} else {
				vector[i]--
			}
		}
	}

	var fp uint64
	for i := 0; i < 64; i++ {
		if vector[i] > 0 {
			fp |= 1 << uint(i)
		}
	}
	return fp
}

// Text hashes the whitespace-separated words of s.
func Text(s string) uint64 {
	return Hash(strings.Fields(s))
}

// Distance returns the Hamming distance between two fingerprints.
func Distance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// Similar reports whether a and b differ in at most threshold bits.
func Similar(a, b uint64, threshold int) bool {
	return Distance(a, b) <= threshold
}
