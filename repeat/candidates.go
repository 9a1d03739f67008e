package repeat

import "bytes"

// anchorOffsets yields, in increasing order, the offsets greater than zero at which
// the first AnchorSize bytes of the data occur again. Any width >= AnchorSize at
// which the data repeats must be one of them.
type anchorOffsets struct {
	data   []byte
	anchor []byte
	last   int
	done   bool
}

func newAnchorOffsets(data []byte) *anchorOffsets {
	return &anchorOffsets{
		data:   data,
		anchor: data[:min(AnchorSize, len(data))],
	}
}

// next returns the next offset or false when there are no more.
func (a *anchorOffsets) next() (int, bool) {
	if a.done {
		return 0, false
	}

	start := a.last + 1
	if start > len(a.data) {
		a.done = true
		return 0, false
	}

	idx := bytes.Index(a.data[start:], a.anchor)
	if idx < 0 {
		a.done = true
		return 0, false
	}

	a.last = start + idx

	return a.last, true
}
