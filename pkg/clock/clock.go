package clock

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gavv/monotime"
)

// MonotonicTime is a reading of a monotonic clock. It is only meaningful
// when compared with another reading from the same Clock.
type MonotonicTime int64

// Sub returns the duration elapsed between two readings.
func (m MonotonicTime) Sub(other MonotonicTime) time.Duration {
	return time.Duration(m - other)
}

// Clock is a benbjohnson clock with an additional monotonic reading.
type Clock interface {
	clock.Clock
	Mono() MonotonicTime
}

type withRealMono struct {
	clock.Clock
}

// New returns a Clock backed by the system clock.
func New() Clock {
	return &withRealMono{clock.New()}
}

func (r withRealMono) Mono() MonotonicTime {
	return MonotonicTime(monotime.Now())
}

// Mock is a Clock whose time is advanced manually.
type Mock struct {
	*clock.Mock
}

// NewMock returns a mock Clock set to the zero of the unix epoch.
func NewMock() *Mock {
	return &Mock{clock.NewMock()}
}

// Mono derives the monotonic reading from the mocked wall time, so
// advancing the mock advances both.
func (m *Mock) Mono() MonotonicTime {
	return MonotonicTime(m.Now().UnixNano())
}
