// Package cache stores encoded dashboard responses with a TTL.
package cache

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

const keyPrefix = "stockscope:dashboard:"

// DashboardKey identifies a dashboard by every request field that shapes the
// response. Indicator order does not affect the key; overlay order does, since
// overlay traces keep request order.
func DashboardKey(req model.Request) string {
	indicators := req.IndicatorNames()
	sort.Strings(indicators)

	d := req.Display
	parts := []string{
		strings.ToUpper(req.Ticker),
		string(req.Period),
		req.Interval,
		string(req.Chart),
		strings.Join(indicators, ","),
		strings.Join(req.Overlays, ","),
		d.Title,
		d.XAxisTitle,
		d.YAxisTitle,
		d.LegendTitle,
		rangeSliderKey(d.RangeSlider),
		strconv.Itoa(d.Width),
		strconv.Itoa(d.Height),
	}
	return keyPrefix + strings.Join(parts, "|")
}

func rangeSliderKey(b null.Bool) string {
	if !b.Valid {
		return "default"
	}
	return strconv.FormatBool(b.Bool)
}
