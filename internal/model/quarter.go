package model

import "fmt"

func formatQuarterLabel(year, quarter int) string {
	return fmt.Sprintf("%dQ%d", year, quarter)
}

// PriorQuarter returns the (year, quarter) that precedes the given one,
// wrapping across year boundaries (Q1 of year Y precedes to Q4 of Y-1).
func PriorQuarter(year, quarter int) (int, int) {
	if quarter <= 1 {
		return year - 1, 4
	}
	return year, quarter - 1
}

// PriorYear returns the (year, quarter) one year before the given one, for
// year-over-year and full-year comparisons.
func PriorYear(year, quarter int) (int, int) {
	return year - 1, quarter
}
