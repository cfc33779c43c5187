package util

import (
	"fmt"
	"strings"
	"time"
)

// FormatHour renders an hour-of-day as "09:00".
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

// FormatWorkWindow renders a working-hours window as "09:00 - 24:00".
func FormatWorkWindow(start, end int) string {
	return fmt.Sprintf("%s - %s", FormatHour(start), FormatHour(end))
}

// FormatPercent renders a ratio already expressed in percent, e.g. 82.5 -> "82.5%".
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatRate renders spend velocity in currency per hour.
func FormatRate(rate float64) string {
	return fmt.Sprintf("$%.2f/h", rate)
}

func FormatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FormatCurrency renders an amount with comma separators for thousands.
func FormatCurrency(amount float64) string {
	str := fmt.Sprintf("%.2f", amount)

	sign := ""
	if strings.HasPrefix(str, "-") {
		sign = "-"
		str = str[1:]
	}

	parts := strings.Split(str, ".")
	intPart := parts[0]
	decPart := parts[1]

	if len(intPart) > 3 {
		chars := []rune(intPart)
		result := []rune{}
		for i := len(chars) - 1; i >= 0; i-- {
			if len(result) > 0 && len(result)%4 == 3 {
				result = append([]rune{','}, result...)
			}
			result = append([]rune{chars[i]}, result...)
		}
		intPart = string(result)
	}

	return fmt.Sprintf("%s$%s.%s", sign, intPart, decPart)
}
