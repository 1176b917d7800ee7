package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PositionKind distinguishes the forms a phase-position literal can take
// (spec §6 "Time-position literal syntax").
type PositionKind int

const (
	PositionBeginning PositionKind = iota
	PositionEnd
	PositionMillis
	PositionPercent
)

// Position is a parsed phase-position literal: 'beginning', 'end', a
// non-negative integer of milliseconds into the phase, or "<n>%".
type Position struct {
	Kind   PositionKind
	Millis float64 // valid when Kind == PositionMillis
	Pct    float64 // valid when Kind == PositionPercent, 0..100
}

// ParsePosition accepts the literal forms from spec §6: the strings
// "beginning"/"end", a non-negative int (milliseconds), or a string
// like "50%".
func ParsePosition(lit interface{}) (Position, error) {
	switch v := lit.(type) {
	case Position:
		return v, nil
	case string:
		switch v {
		case "beginning":
			return Position{Kind: PositionBeginning}, nil
		case "end":
			return Position{Kind: PositionEnd}, nil
		}
		if strings.HasSuffix(v, "%") {
			numStr := strings.TrimSuffix(v, "%")
			n, err := strconv.ParseFloat(numStr, 64)
			if err != nil {
				return Position{}, &InvalidPhasePositionError{Literal: lit}
			}
			if n < 0 || n > 100 {
				return Position{}, &InvalidPhasePositionError{Literal: lit}
			}
			return Position{Kind: PositionPercent, Pct: n}, nil
		}
		return Position{}, &InvalidPhasePositionError{Literal: lit}
	case int:
		if v < 0 {
			return Position{}, &InvalidPhasePositionError{Literal: lit}
		}
		return Position{Kind: PositionMillis, Millis: float64(v)}, nil
	case float64:
		if v < 0 {
			return Position{}, &InvalidPhasePositionError{Literal: lit}
		}
		return Position{Kind: PositionMillis, Millis: v}, nil
	default:
		return Position{}, &InvalidPhasePositionError{Literal: lit}
	}
}

// Resolve turns a parsed Position into a concrete offset into a phase of
// the given length, erroring if a millisecond/percentage value falls
// outside [0, phaseLength].
func (p Position) Resolve(phaseLength time.Duration) (time.Duration, error) {
	switch p.Kind {
	case PositionBeginning:
		return 0, nil
	case PositionEnd:
		return phaseLength, nil
	case PositionMillis:
		d := time.Duration(p.Millis) * time.Millisecond
		if d < 0 || d > phaseLength {
			return 0, &InvalidPhasePositionError{Literal: fmt.Sprintf("%gms", p.Millis)}
		}
		return d, nil
	case PositionPercent:
		if p.Pct < 0 || p.Pct > 100 {
			return 0, &InvalidPhasePositionError{Literal: fmt.Sprintf("%g%%", p.Pct)}
		}
		d := time.Duration(p.Pct / 100 * float64(phaseLength))
		return d, nil
	default:
		return 0, &InvalidPhasePositionError{Literal: p}
	}
}
