package viewer

import "fmt"

// SpreadMode controls how pages pair up into two-page spreads
type SpreadMode string

const (
	SpreadNone SpreadMode = "none"
	SpreadOdd  SpreadMode = "odd"  // Odd pages open a spread
	SpreadEven SpreadMode = "even" // Page 1 is alone, even pages open a spread
)

// Next returns the mode the options panel cycles to
func (m SpreadMode) Next() SpreadMode {
	switch m {
	case SpreadNone:
		return SpreadOdd
	case SpreadOdd:
		return SpreadEven
	default:
		return SpreadNone
	}
}

// Label returns a display name for the mode
func (m SpreadMode) Label() string {
	switch m {
	case SpreadOdd:
		return "Odd Spreads"
	case SpreadEven:
		return "Even Spreads"
	default:
		return "No Spreads"
	}
}

func (m SpreadMode) valid() bool {
	return m == SpreadNone || m == SpreadOdd || m == SpreadEven
}

// UnknownTotal marks a page count that has not been fetched yet
const UnknownTotal = 0

// Standardize returns the page a spread containing raw starts on
func Standardize(raw int, mode SpreadMode) int {
	switch mode {
	case SpreadOdd:
		if raw%2 == 0 {
			return raw - 1
		}
	case SpreadEven:
		if raw != 1 && raw%2 == 1 {
			return raw - 1
		}
	}
	return raw
}

// IsSpread reports whether std is shown together with std+1.
// The last page never pairs with a page beyond the end.
func IsSpread(std int, mode SpreadMode, total int) bool {
	if total == UnknownTotal {
		return false
	}
	switch mode {
	case SpreadOdd:
		return std != total
	case SpreadEven:
		return std != 1 && std != total
	default:
		return false
	}
}

// Advance returns the page reached by one forward or backward turn from
// current. Forward motion is clamped to total when it is known; backward
// motion never goes below 1.
func Advance(forward bool, current int, mode SpreadMode, total int) int {
	if forward {
		delta := 1
		switch mode {
		case SpreadOdd:
			if current%2 == 1 {
				delta = 2
			}
		case SpreadEven:
			if current%2 == 0 {
				delta = 2
			}
		}
		next := current + delta
		if total != UnknownTotal && next > total {
			next = total
		}
		return next
	}

	delta := 1
	switch mode {
	case SpreadOdd:
		if current%2 == 1 {
			delta = 2
		} else {
			delta = 3
		}
	case SpreadEven:
		if current%2 == 1 {
			delta = 3
		} else {
			delta = 2
		}
	}
	return max(current-delta, 1)
}

// Direction is the reading direction
type Direction string

const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

func (d Direction) valid() bool {
	return d == LTR || d == RTL
}

// Intent is a physical navigation input, independent of reading order
type Intent int

const (
	IntentLeft Intent = iota
	IntentRight
)

func (i Intent) String() string {
	if i == IntentLeft {
		return "left"
	}
	return "right"
}

// Forward maps a physical intent to logical page order: left is backward
// under LTR and forward under RTL.
func (d Direction) Forward(i Intent) bool {
	if d == RTL {
		return i == IntentLeft
	}
	return i == IntentRight
}

// ParseSpreadMode parses a stored spread mode
func ParseSpreadMode(s string) (SpreadMode, error) {
	m := SpreadMode(s)
	if !m.valid() {
		return SpreadNone, fmt.Errorf("unknown spread mode %q", s)
	}
	return m, nil
}
