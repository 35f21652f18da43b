package types

import "github.com/m-mizutani/goerr/v2"

// Duration is the period a report covers.
type Duration string

const (
	DurationDay    Duration = "day"
	DurationWeek   Duration = "week"
	DurationMonth  Duration = "month"
	DurationCustom Duration = "custom"
)

func AllDurations() []Duration {
	return []Duration{DurationDay, DurationWeek, DurationMonth, DurationCustom}
}

func (d Duration) IsValid() bool {
	switch d {
	case DurationDay, DurationWeek, DurationMonth, DurationCustom:
		return true
	default:
		return false
	}
}

// IsCustom reports whether the report needs an explicit start and end date.
func (d Duration) IsCustom() bool {
	return d == DurationCustom
}

func (d Duration) String() string {
	return string(d)
}

func ParseDuration(s string) (Duration, error) {
	d := Duration(s)
	if !d.IsValid() {
		return "", goerr.Wrap(ErrInvalidValue, "invalid duration", goerr.V("duration", s))
	}
	return d, nil
}
