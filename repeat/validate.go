package repeat

import (
	"bytes"
	"fmt"
)

// isExactRepeat returns true if data consists of n identical chunks.
func isExactRepeat(data []byte, n int) bool {
	if n <= 0 {
		panic(fmt.Sprintf("invalid repeat count: %v", n))
	}

	if len(data)%n != 0 {
		return false
	}

	chunkSize := len(data) / n
	first := data[:chunkSize]

	for i := 1; i < n; i++ {
		if !bytes.Equal(first, data[i*chunkSize:(i+1)*chunkSize]) {
			return false
		}
	}

	return true
}

// isExactRepeatFast is equivalent to isExactRepeat but verifies the repetition
// one prime factor of n at a time, shrinking the data to a single chunk after each
// factor.
//
// Data that consists of n identical chunks also consists of p identical chunks
// for every prime factor p of n, so 1-byte pattern repeated 2^20 times needs
// 20 comparisons of 2 chunks each instead of 2^20 comparisons.
func isExactRepeatFast(data []byte, n int) bool {
	if n <= 0 {
		panic(fmt.Sprintf("invalid repeat count: %v", n))
	}

	for _, p := range primeFactors(n) {
		if !isExactRepeat(data, p) {
			return false
		}

		data = data[:len(data)/p]
	}

	return true
}

// primeFactors returns prime factors of n in ascending order, with multiplicity.
func primeFactors(n int) []int {
	var result []int

	for p := 2; p*p <= n; p++ {
		for n%p == 0 {
			result = append(result, p)
			n /= p
		}
	}

	if n > 1 {
		result = append(result, n)
	}

	return result
}
