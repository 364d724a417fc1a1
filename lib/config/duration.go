package config

import (
	"time"

	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

// Duration is a time.Duration that is written as a string such as
// "100ms" in config files.
type Duration time.Duration

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		return derror.ErrInvalidDuration.Wrap(err).GenWithStackByArgs(string(text))
	}
	*d = Duration(dur)
	return nil
}
