package repeat

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}

	return b
}

func TestRepeatsAtWidth_Fractional(t *testing.T) {
	for width := 1; width < 100; width++ {
		data := bytes.Repeat(sequence(width), 10)

		// slice off the end to make sure fractional repeats are handled
		for range width {
			data = data[:len(data)-1]
			require.True(t, repeatsAtWidth(data, width), "width %v, length %v", width, len(data))
		}
	}
}

func TestRepeatsAtWidth_Example(t *testing.T) {
	require.True(t, RepeatsAtWidth([]byte("ABCDEFGHABCD"), 8))
	require.False(t, RepeatsAtWidth([]byte("ABCDEFGHABCE"), 8))
	require.False(t, RepeatsAtWidth([]byte("ABCDEFGHABCD"), 7))
	require.True(t, RepeatsAtWidth([]byte("ABCDEFGHABCD"), 12))
	require.False(t, RepeatsAtWidth([]byte("ABCD"), 5))
}

func TestRepeatsAtWidth_Large(t *testing.T) {
	start := []byte("Starts like this.")

	var data []byte
	data = append(data, start...)
	data = append(data, make([]byte, 1<<20)...)
	data = append(data, "The end!"...)

	coreLength := len(data)

	data = append(data, start...)

	require.True(t, repeatsAtWidth(data, coreLength))
}

func TestRepeatsAtWidth_WholeAndPartialCopies(t *testing.T) {
	for width := 1; width <= 40; width++ {
		block := sequence(width)

		for k := 1; k <= 5; k++ {
			for remainder := range width {
				data := append(bytes.Repeat(block, k), block[:remainder]...)
				require.True(t, repeatsAtWidth(data, width), "width=%v k=%v remainder=%v", width, k, remainder)
			}
		}
	}
}

func TestRepeatsAtWidth_InvalidWidth(t *testing.T) {
	require.Panics(t, func() { repeatsAtWidth([]byte("AA"), 0) })
}
