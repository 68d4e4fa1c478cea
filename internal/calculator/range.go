package calculator

import (
	"math"

	"StockScope/internal/model"
)

// PeriodRange scans every record and returns the highest High and lowest Low.
func PeriodRange(records []model.Record) (high, low float64, err error) {
	if len(records) == 0 {
		return 0, 0, model.ErrEmptyInput
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range records {
		if r.High > high {
			high = r.High
		}
		if r.Low < low {
			low = r.Low
		}
	}
	return high, low, nil
}

// TotalVolume sums Volume across every record.
func TotalVolume(records []model.Record) float64 {
	var total float64
	for _, r := range records {
		total += r.Volume
	}
	return total
}
