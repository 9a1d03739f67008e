// Package repeat detects data that consists of a smaller block of bytes repeated
// some, possibly fractional, number of times.
package repeat

const (
	// AnchorSize is the number of leading bytes searched for later in the data
	// to narrow down the widths that are worth testing.
	AnchorSize = 32

	// DefaultMaxAttempts is the number of candidate widths tested before a search
	// is considered to be brute-forcing and is aborted.
	DefaultMaxAttempts = 1024

	// Unlimited disables aborting of searches.
	Unlimited = -1
)

// Outcome describes the result of a search.
type Outcome int

// Supported outcomes.
const (
	NotFound Outcome = iota
	Found
	Aborted
)

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o Outcome) String() string {
	switch o {
	case NotFound:
		return "not-found"
	case Found:
		return "found"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Method identifies the search strategy that produced a result.
type Method int

// Supported methods.
const (
	MethodNone Method = iota
	MethodBruteForce
	MethodAnchor
	MethodTail
)

func (m Method) String() string {
	switch m {
	case MethodBruteForce:
		return "brute-force"
	case MethodAnchor:
		return "anchor"
	case MethodTail:
		return "tail"
	default:
		return "none"
	}
}

// Options controls the search.
type Options struct {
	// MaxAttempts is the number of candidate widths tested before giving up.
	// Zero means DefaultMaxAttempts, negative values never give up.
	MaxAttempts int
}

func (o Options) maxAttempts() int {
	if o.MaxAttempts == 0 {
		return DefaultMaxAttempts
	}

	return o.MaxAttempts
}

// Result is the result of a search.
type Result struct {
	Outcome Outcome `json:"outcome"`

	// Width is the size of the repeated data, set when Outcome is Found.
	Width int `json:"width,omitempty"`

	// Attempts is the number of anchor candidates that were rejected.
	Attempts int `json:"attempts"`

	Method Method `json:"-"`
}

// ExcessBytes returns the number of bytes following the first copy of the repeated data.
func (r Result) ExcessBytes(dataLength int) int {
	if r.Outcome != Found {
		return 0
	}

	return dataLength - r.Width
}

// Ratio returns the ratio of the data length to the width.
func (r Result) Ratio(dataLength int) float64 {
	if r.Outcome != Found {
		return 0
	}

	return float64(dataLength) / float64(r.Width)
}

// Detect returns the smallest width at which data repeats, as found by the search.
//
// Data no longer than AnchorSize is brute-forced. Otherwise only widths at which
// the leading AnchorSize bytes occur again are tested, which fails for some inputs
// (long runs of a single byte followed by something else) that produce many such
// widths. Those searches are aborted after opt.MaxAttempts rejected widths.
// When no anchor width matches, the data is checked for a repeat of fewer than
// AnchorSize leading bytes at its end.
func Detect(data []byte, opt Options) Result {
	if len(data) < 2 { //nolint:mnd
		return Result{Outcome: NotFound}
	}

	if len(data) <= AnchorSize {
		for width := 1; width < len(data); width++ {
			if repeatsAtWidth(data, width) {
				return Result{Outcome: Found, Width: width, Method: MethodBruteForce}
			}
		}

		return Result{Outcome: NotFound}
	}

	maxAttempts := opt.maxAttempts()
	attempts := 0

	candidates := newAnchorOffsets(data)

	for {
		width, ok := candidates.next()
		if !ok {
			break
		}

		if repeatsAtWidth(data, width) {
			return Result{Outcome: Found, Width: width, Attempts: attempts, Method: MethodAnchor}
		}

		attempts++
		if maxAttempts > 0 && attempts >= maxAttempts {
			return Result{Outcome: Aborted, Attempts: attempts}
		}
	}

	if width, ok := findMinimalTailRepeat(data); ok {
		return Result{Outcome: Found, Width: width, Attempts: attempts, Method: MethodTail}
	}

	return Result{Outcome: NotFound, Attempts: attempts}
}
