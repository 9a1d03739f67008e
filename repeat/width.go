package repeat

import (
	"bytes"
	"fmt"
)

// RepeatsAtWidth returns true if data is its first width bytes repeated, where the
// last copy may be partial (e.g. "ABCDEFGHABCD" repeats at width 8).
func RepeatsAtWidth(data []byte, width int) bool {
	return repeatsAtWidth(data, width)
}

func repeatsAtWidth(data []byte, width int) bool {
	if width <= 0 {
		panic(fmt.Sprintf("invalid width: %v", width))
	}

	if width > len(data) {
		return false
	}

	fullRepeats := len(data) / width

	if remainder := len(data) % width; remainder != 0 {
		if !bytes.Equal(data[:remainder], data[len(data)-remainder:]) {
			return false
		}

		data = data[:len(data)-remainder]
	}

	return isExactRepeatFast(data, fullRepeats)
}
