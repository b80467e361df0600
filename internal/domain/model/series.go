package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// RatePoint is one dated entry of a series. Single-target series fill Rate,
// multi-target series fill Rates.
type RatePoint struct {
	Date  string
	Rate  float64
	Rates map[Currency]float64
}

// DateRates is an ordered date -> rate mapping. It marshals to a JSON object
// whose keys keep the slice order.
type DateRates []RatePoint

func (d DateRates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.Date)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if p.Rates != nil {
			val, err = json.Marshal(p.Rates)
		} else {
			val, err = json.Marshal(p.Rate)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *DateRates) UnmarshalJSON(data []byte) error {
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*d = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("rates: expected object, got %s", res.Type)
	}

	points := DateRates{}
	res.ForEach(func(date, value gjson.Result) bool {
		p := RatePoint{Date: date.String()}
		if value.IsObject() {
			p.Rates = make(map[Currency]float64)
			value.ForEach(func(code, rate gjson.Result) bool {
				p.Rates[Currency(code.String())] = rate.Float()
				return true
			})
		} else {
			p.Rate = value.Float()
		}
		points = append(points, p)
		return true
	})
	*d = points
	return nil
}

// RateSeries is the normalized result of a rate lookup.
type RateSeries struct {
	Group     string     `json:"group,omitempty"`
	Base      Currency   `json:"base"`
	Targets   []Currency `json:"targets"`
	Multi     bool       `json:"multi"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Rates     DateRates  `json:"rates"`
}

// SortByDate orders points ascending. ISO dates compare chronologically as strings.
func (s *RateSeries) SortByDate() {
	slices.SortStableFunc(s.Rates, func(a, b RatePoint) int {
		return strings.Compare(a.Date, b.Date)
	})
}

func (s *RateSeries) Dates() []string {
	dates := make([]string, len(s.Rates))
	for i, p := range s.Rates {
		dates[i] = p.Date
	}
	return dates
}

// Rate returns the single-target rate for date.
func (s *RateSeries) Rate(date string) (float64, bool) {
	for _, p := range s.Rates {
		if p.Date == date {
			return p.Rate, p.Rates == nil
		}
	}
	return 0, false
}
