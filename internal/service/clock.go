package service

import "time"

// Clock abstracts "today" so latest-rate lookups are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }
