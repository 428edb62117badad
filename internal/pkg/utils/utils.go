package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ConvertMinutesToDuration convert minutes to duration format string
// Example: 125 -> "2h 5m"
func ConvertMinutesToDuration(durationInMinutes int64) string {

	h := durationInMinutes / 60
	m := durationInMinutes % 60

	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}

	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}

	return fmt.Sprintf("%dh %dm", h, m)
}

// ParseISODuration convert an ISO-8601 duration as sent by the booking API to minutes.
// Seconds are truncated. Example: "PT2H10M" -> 130, "P1DT1H" -> 1500
func ParseISODuration(duration string) (int64, error) {
	match := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(duration)))
	if match == nil || match[1]+match[2]+match[3]+match[4] == "" {
		return 0, fmt.Errorf("invalid ISO-8601 duration %q", duration)
	}

	var total int64
	for i, factor := range []int64{24 * 60, 60, 1} {
		part := match[i+1]
		if part == "" {
			continue
		}

		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid ISO-8601 duration %q: %w", duration, err)
		}
		total += v * factor
	}

	return total, nil
}

// FormatISODuration renders an ISO-8601 duration the way the results page shows it,
// falling back to the raw value when it cannot be parsed.
// Example: "PT2H10M" -> "2h 10m"
func FormatISODuration(duration string) string {
	minutes, err := ParseISODuration(duration)
	if err != nil {
		return duration
	}

	return ConvertMinutesToDuration(minutes)
}

// FormatMoney formats an amount with thousand separators and the currency code.
// Example: 1234.5, "AUD" -> "AUD 1,234.50"
func FormatMoney(amount float64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, frac, _ := strings.Cut(str, ".")

	var result []byte
	count := 0
	for i := len(whole) - 1; i >= 0; i-- {
		result = append([]byte{whole[i]}, result...)
		count++
		if count%3 == 0 && i != 0 {
			result = append([]byte{','}, result...)
		}
	}

	sign := ""
	if negative {
		sign = "-"
	}

	if currency == "" {
		return fmt.Sprintf("%s%s.%s", sign, result, frac)
	}

	return fmt.Sprintf("%s %s%s.%s", currency, sign, result, frac)
}
