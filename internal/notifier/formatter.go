package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockScope/internal/model"

	"github.com/guregu/null/v5"
	"github.com/shopspring/decimal"
)

// price renders v with two decimal places, avoiding float formatting drift.
func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func signedPrice(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

// percent renders an optional percent change; undefined values print as n/a.
func percent(p null.Float) string {
	if !p.Valid {
		return "n/a"
	}
	return signedPrice(p.Float64) + "%"
}

func volume(v float64) string {
	d := decimal.NewFromFloat(v)
	switch {
	case d.GreaterThanOrEqual(decimal.NewFromInt(1_000_000_000)):
		return d.Div(decimal.NewFromInt(1_000_000_000)).StringFixed(2) + "B"
	case d.GreaterThanOrEqual(decimal.NewFromInt(1_000_000)):
		return d.Div(decimal.NewFromInt(1_000_000)).StringFixed(2) + "M"
	case d.GreaterThanOrEqual(decimal.NewFromInt(1_000)):
		return d.Div(decimal.NewFromInt(1_000)).StringFixed(1) + "K"
	default:
		return d.StringFixed(0)
	}
}

// FormatQuote formats one dashboard as a Telegram message.
func FormatQuote(d *model.Dashboard) string {
	var b strings.Builder
	m := d.Metrics

	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | %s (%s)\n\n", html.EscapeString(d.Request.Ticker), d.Request.Period, d.Request.Interval))
	b.WriteString(fmt.Sprintf("Last: %s (%s, %s)\n", price(m.LastClose), signedPrice(m.PriceChange), percent(m.PercentChange)))
	b.WriteString(fmt.Sprintf("High: %s | Low: %s\n", price(m.PeriodHigh), price(m.PeriodLow)))
	b.WriteString(fmt.Sprintf("Volume: %s\n", volume(m.TotalVolume)))

	if names := d.Series.ColumnNames(); len(names) > 0 {
		b.WriteString("\n")
		for _, name := range names {
			col, _ := d.Series.Column(name)
			last := "n/a"
			if n := len(col); n > 0 && col[n-1].Valid {
				last = price(col[n-1].Float64)
			}
			b.WriteString(fmt.Sprintf("%s: %s\n", name, last))
		}
	}
	return b.String()
}

// DigestLine is one ticker row of the watchlist digest.
type DigestLine struct {
	Ticker  string
	Metrics *model.Metrics
	Err     error
}

// FormatDigest formats the watchlist summary.
func FormatDigest(lines []DigestLine, at time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>StockScope digest</b> | %s\n\n", at.Format("2006-01-02 15:04 MST")))
	for _, l := range lines {
		ticker := html.EscapeString(l.Ticker)
		if l.Err != nil || l.Metrics == nil {
			b.WriteString(fmt.Sprintf("%s: no data\n", ticker))
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s (%s)\n", ticker, price(l.Metrics.LastClose), percent(l.Metrics.PercentChange)))
	}
	return b.String()
}

// FormatWatchlist lists the tickers refreshed on schedule.
func FormatWatchlist(tickers []string) string {
	if len(tickers) == 0 {
		return "Watchlist is empty."
	}
	return "👀 <b>Watchlist</b>\n" + html.EscapeString(strings.Join(tickers, ", "))
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("🤖 <b>Commands</b>\n")
	b.WriteString("/quote &lt;TICKER&gt; [period] - metrics for a ticker\n")
	b.WriteString("/watchlist - scheduled tickers\n")
	b.WriteString("/help - this message\n")
	return b.String()
}
