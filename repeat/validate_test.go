package repeat

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func TestIsExactRepeat(t *testing.T) {
	for i := 1; i <= len(alphabet); i++ {
		data := bytes.Repeat([]byte(alphabet[:i]), 1024)

		require.True(t, isExactRepeat(data, 1024), "prefix %v", i)
		require.False(t, isExactRepeat(append(bytes.Clone(data), '1'), 1024), "prefix %v", i)
		require.False(t, isExactRepeat(data, 1025), "prefix %v", i)
	}
}

func TestIsExactRepeat_Coarse(t *testing.T) {
	data := bytes.Repeat([]byte("AB"), 16)

	for _, n := range []int{1, 2, 4, 8, 16} {
		require.True(t, isExactRepeat(data, n), "n=%v", n)
	}

	for _, n := range []int{3, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15, 32} {
		require.False(t, isExactRepeat(data, n), "n=%v", n)
	}
}

func TestIsExactRepeat_InvalidCount(t *testing.T) {
	require.Panics(t, func() { isExactRepeat([]byte("AA"), 0) })
	require.Panics(t, func() { isExactRepeatFast([]byte("AA"), -1) })
}

func TestIsExactRepeatFast(t *testing.T) {
	for i := 1; i <= len(alphabet); i++ {
		data := bytes.Repeat([]byte(alphabet[:i]), 1024)
		require.True(t, isExactRepeatFast(data, 1024), "prefix %v", i)
	}

	const primorial = 2 * 3 * 5 * 7 * 11 * 13

	require.True(t, isExactRepeatFast(make([]byte, primorial), primorial))

	// a single factor, which results in one call to isExactRepeat
	require.True(t, isExactRepeatFast(make([]byte, 65537), 65537))

	broken := make([]byte, primorial)
	broken[primorial-1] = 1
	require.False(t, isExactRepeatFast(broken, primorial))
}

func TestIsExactRepeatFast_MatchesIsExactRepeat(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for range 2000 {
		block := make([]byte, 1+r.Intn(6))

		// small alphabet so that accidental repetition happens
		for i := range block {
			block[i] = byte('a' + r.Intn(2))
		}

		data := bytes.Repeat(block, 1+r.Intn(40))
		if r.Intn(3) == 0 {
			data[r.Intn(len(data))] = 'z'
		}

		for n := 1; n <= len(data); n++ {
			if len(data)%n != 0 {
				continue
			}

			require.Equal(t, isExactRepeat(data, n), isExactRepeatFast(data, n), "data=%q n=%v", data, n)
		}
	}
}

func TestPrimeFactors(t *testing.T) {
	cases := []struct {
		n    int
		want []int
	}{
		{1, nil},
		{2, []int{2}},
		{12, []int{2, 2, 3}},
		{97, []int{97}},
		{1024, []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}},
		{30030, []int{2, 3, 5, 7, 11, 13}},
		{65537, []int{65537}},
		{119, []int{7, 17}},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, primeFactors(tc.n), "n=%v", tc.n)
	}
}
