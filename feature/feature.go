// Package feature turns repetition found by package repeat into reportable features.
package feature

import (
	"bytes"

	"github.com/kopia/repbytes/repeat"
)

// Tag is attached to every reported feature.
const Tag = "repeated_bytes"

// Defaults used by DefaultPolicy.
const (
	// DefaultMinExcessBytes prevents reporting trivial repetition, such as an executable
	// whose last byte happens to match its first.
	DefaultMinExcessBytes = 64
	DefaultMinRatio       = 1.25

	// DefaultMaxPreviewSize is the largest repeated data rendered as text. Larger data is
	// reported as deduplicated content instead.
	DefaultMaxPreviewSize = 32
)

// Policy decides which repetitions are significant.
type Policy struct {
	MinExcessBytes int64   `json:"minExcessBytes"`
	MinRatio       float64 `json:"minRatio"`
	MaxPreviewSize int     `json:"maxPreviewSize"`
}

// DefaultPolicy returns the default policy.
func DefaultPolicy() Policy {
	return Policy{
		MinExcessBytes: DefaultMinExcessBytes,
		MinRatio:       DefaultMinRatio,
		MaxPreviewSize: DefaultMaxPreviewSize,
	}
}

// Feature describes significant repetition.
type Feature struct {
	Width       int      `json:"width"`
	ExcessBytes int64    `json:"excessBytes"`
	Ratio       float64  `json:"ratio"`
	Preview     string   `json:"preview,omitempty"`
	Tags        []string `json:"tags"`

	// Deduplicated is the repeated data when it is too large for a preview.
	Deduplicated []byte `json:"-"`
}

// Evaluate returns the feature for the provided detection result or false if the result
// is not significant according to the policy. Aborted searches never produce features.
func Evaluate(data []byte, r repeat.Result, p Policy) (*Feature, bool) {
	if r.Outcome != repeat.Found {
		return nil, false
	}

	excess := int64(r.ExcessBytes(len(data)))
	ratio := r.Ratio(len(data))

	if ratio < p.MinRatio || excess < p.MinExcessBytes {
		return nil, false
	}

	f := &Feature{
		Width:       r.Width,
		ExcessBytes: excess,
		Ratio:       ratio,
		Tags:        []string{Tag},
	}

	core := data[:r.Width]

	if r.Width <= p.MaxPreviewSize {
		f.Preview = Preview(core)
	} else {
		f.Deduplicated = core
	}

	return f, true
}

// Reconstruct returns the core data repeated and truncated to the given length.
func Reconstruct(core []byte, length int) []byte {
	if len(core) == 0 || length <= 0 {
		return nil
	}

	result := bytes.Repeat(core, (length+len(core)-1)/len(core))

	return result[:length]
}
