package calculator

import (
	"github.com/guregu/null/v5"
)

// SMASeries computes the simple moving average of prices over period.
// Entries before index period-1 are invalid.
func SMASeries(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 {
		return out
	}
	sum := 0.0
	for i, p := range prices {
		sum += p
		if i >= period {
			sum -= prices[i-period]
		}
		if i >= period-1 {
			out[i] = null.FloatFrom(sum / float64(period))
		}
	}
	return out
}

// EMASeries computes the exponential moving average with alpha = 2/(period+1),
// seeded with the SMA of the first period prices at index period-1.
func EMASeries(prices []float64, period int) []null.Float {
	out := make([]null.Float, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}
	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += prices[i]
	}
	current := seed / float64(period)
	out[period-1] = null.FloatFrom(current)

	for i := period; i < len(prices); i++ {
		current = prices[i]*alpha + current*(1-alpha)
		out[i] = null.FloatFrom(current)
	}
	return out
}
