package adapter

import "time"

// Clock is the time source of the updater and tracker. Now is always in UTC.
//
//go:generate mockgen -source=clock.go -destination=../mocks/clock.go -package=mocks -mock_names=Clock=MockClock
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// ClockFunc adapts a function returning the current time to Clock
type ClockFunc func() time.Time

// NewClock returns the wall clock
func NewClock() Clock {
	return ClockFunc(time.Now)
}

// FixedClock returns a clock frozen at t
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

func (f ClockFunc) Now() time.Time {
	return f().UTC()
}

func (f ClockFunc) Since(t time.Time) time.Duration {
	return f().Sub(t)
}
