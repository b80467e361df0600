package service

import (
	"fmt"
	"time"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/pkg/utils"
)

// ValidateCurrencyCode canonicalizes code and checks it is a three-letter code.
// Only the format is checked.
func ValidateCurrencyCode(code string) (model.Currency, error) {
	c := model.NormalizeCurrency(code)
	if !c.IsWellFormed() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// ValidateCurrencyCodes validates every element and stops at the first bad one.
func ValidateCurrencyCodes(codes []string) ([]model.Currency, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: empty currency list", ErrInvalidCurrency)
	}

	out := make([]model.Currency, 0, len(codes))
	for _, code := range codes {
		c, err := ValidateCurrencyCode(code)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ValidateIsStringOrArray accepts a single code or a non-empty sequence of codes.
func ValidateIsStringOrArray(value any) error {
	_, _, err := targetCodes(value)
	return err
}

// ValidateStartAndEndDates rejects missing dates and a start after the end.
// Dates are compared as calendar days.
func ValidateStartAndEndDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidDateRange)
	}
	if utils.TruncateDay(start).After(utils.TruncateDay(end)) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDateRange,
			utils.FormatDate(start), utils.FormatDate(end))
	}
	return nil
}

// targetCodes unpacks the accepted target shapes into raw codes. multi is false only
// for a single string.
func targetCodes(value any) (codes []string, multi bool, err error) {
	switch v := value.(type) {
	case string:
		return []string{v}, false, nil
	case model.Currency:
		return []string{string(v)}, false, nil
	case []string:
		if len(v) > 0 {
			return v, true, nil
		}
	case []model.Currency:
		if len(v) > 0 {
			codes = make([]string, len(v))
			for i, c := range v {
				codes[i] = string(c)
			}
			return codes, true, nil
		}
	case []any:
		if len(v) > 0 {
			codes = make([]string, len(v))
			for i, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, false, fmt.Errorf("%w: element %d is %T", ErrInvalidTargetShape, i, item)
				}
				codes[i] = s
			}
			return codes, true, nil
		}
	}
	return nil, false, fmt.Errorf("%w: got %T", ErrInvalidTargetShape, value)
}
