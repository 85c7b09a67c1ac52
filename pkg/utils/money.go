package utils

import "fmt"

// Amounts are stored in paise (minor currency units). The aggregator speaks
// paise on the wire, the dashboard displays rupees.

// PaiseToRupees converts minor units to a rupee float for display math.
func PaiseToRupees(paise int64) float64 {
	return float64(paise) / 100
}

// RupeesToPaise converts a rupee amount to minor units, rounding to the
// nearest paisa to absorb float noise from JSON numbers.
func RupeesToPaise(rupees float64) int64 {
	if rupees >= 0 {
		return int64(rupees*100 + 0.5)
	}
	return int64(rupees*100 - 0.5)
}

// FormatRupees renders paise as "₹X.XX" the way the dashboard shows money.
func FormatRupees(paise int64) string {
	return fmt.Sprintf("₹%.2f", PaiseToRupees(paise))
}
