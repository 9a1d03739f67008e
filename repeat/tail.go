package repeat

import "bytes"

// findMinimalTailRepeat finds repetitions the anchor search cannot see: data that
// ends with a copy of fewer than AnchorSize of its leading bytes. Larger tails are
// tried first and the width of the repeated data is returned.
func findMinimalTailRepeat(data []byte) (int, bool) {
	for size := AnchorSize - 1; size > 0; size-- {
		if size >= len(data) {
			continue
		}

		if bytes.Equal(data[len(data)-size:], data[:size]) {
			return len(data) - size, true
		}
	}

	return 0, false
}
