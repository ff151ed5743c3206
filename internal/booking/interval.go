package booking

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Validate reports ErrInvalidInterval unless End is strictly after Start.
func (i Interval) Validate() error {
	if i.Start.IsZero() || i.End.IsZero() || !i.End.After(i.Start) {
		return ErrInvalidInterval
	}
	return nil
}

func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
// Intervals that only touch at an endpoint do not overlap. Every conflict check
// in the package goes through this function.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
