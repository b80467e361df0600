package ports

import "errors"

var (
	ErrNetwork          = errors.New("rate service unreachable")
	ErrUpstream         = errors.New("rate service returned an invalid response")
	ErrCacheUnavailable = errors.New("cache store unavailable")
)
