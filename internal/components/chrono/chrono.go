package chrono

import "time"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in UTC.
	Now() time.Time
}

// StandardTime is the standard implementation of TimeAPI using the standard library.
type StandardTime struct{}

// NewStandardTime is the constructor of StandardTime.
func NewStandardTime() StandardTime {
	return StandardTime{}
}

func (StandardTime) Now() time.Time {
	return time.Now().UTC()
}

// FixedTime always returns the same instant, tests move it with Set.
type FixedTime struct {
	now *time.Time
}

func NewFixedTime(now time.Time) FixedTime {
	now = now.UTC()
	return FixedTime{now: &now}
}

func (f FixedTime) Now() time.Time {
	return *f.now
}

func (f FixedTime) Set(now time.Time) {
	*f.now = now.UTC()
}
