// internal/eligibility/format.go
package eligibility

import (
	"math"

	"yojanamitra/internal/models"
)

func formatAmount(v float64) string {
	return models.FormatAmount(v)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
