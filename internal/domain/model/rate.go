package model

import (
	"time"

	"exchange-rate-resolver/pkg/utils"
)

// DateRange is an inclusive span of calendar dates. Both ends are held at UTC midnight.
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange truncates both bounds to calendar dates. Ordering is checked by the validator.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{start: utils.TruncateDay(start), end: utils.TruncateDay(end)}
}

func (r DateRange) Start() time.Time { return r.start }

func (r DateRange) End() time.Time { return r.end }

// Contains reports whether an ISO date string falls inside the range.
func (r DateRange) Contains(date string) bool {
	d, err := utils.ParseDate(date)
	if err != nil {
		return false
	}
	return !d.Before(r.start) && !d.After(r.end)
}

// Days lists every calendar date in the range in ascending order.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// CacheOptions controls write-through and one-shot invalidation for a single call.
// The zero value caches results and does not bust.
type CacheOptions struct {
	DisableCache bool
	BustCache    bool
}

func (o CacheOptions) ShouldCache() bool {
	return !o.DisableCache
}

// RangeRequest is the inbound parameter set for a date-range lookup.
// Target is either a single code (string) or a sequence of codes.
type RangeRequest struct {
	Group  string
	Base   string
	Target any
	Start  time.Time
	End    time.Time
}
