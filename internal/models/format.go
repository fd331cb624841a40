// internal/models/format.go
package models

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a rupee amount with thousands separators, e.g. 150000 as "150,000".
func FormatAmount(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return amountPrinter.Sprintf("%d", int64(v))
	}
	return amountPrinter.Sprintf("%.2f", v)
}
