package quotes

import (
	"strings"

	"stock-ticker/pkg/models"

	"github.com/shopspring/decimal"
)

const (
	// MaxEntryLen bounds the text generated for one symbol.
	MaxEntryLen = 64
	separator   = "    "
)

var hundred = decimal.NewFromInt(100)

// changeOf returns the absolute and percent change from open to close. A zero
// open yields a zero percentage rather than an infinity.
func changeOf(open, last float64) (change, percent float64) {
	o := decimal.NewFromFloat(open)
	d := decimal.NewFromFloat(last).Sub(o)
	if o.IsZero() {
		return d.InexactFloat64(), 0
	}
	return d.InexactFloat64(), d.Div(o).Mul(hundred).InexactFloat64()
}

// formatEntry renders one symbol, e.g. "AAPL: $105.00 +5.00% (+$5.00)    ".
func formatEntry(q models.Quote) string {
	var b strings.Builder
	b.WriteString(q.ID)
	if !q.HasData() {
		b.WriteString(": No data yet...")
	} else {
		b.WriteString(": $")
		b.WriteString(decimal.NewFromFloat(q.Price).StringFixed(2))
		b.WriteByte(' ')
		b.WriteString(signed(q.ChangePercent))
		b.WriteString("% (")
		sign := byte('+')
		if q.Change < 0 {
			sign = '-'
		}
		b.WriteByte(sign)
		b.WriteByte('$')
		b.WriteString(decimal.NewFromFloat(q.Change).Abs().StringFixed(2))
		b.WriteByte(')')
	}
	b.WriteString(separator)

	entry := b.String()
	if len(entry) > MaxEntryLen {
		entry = entry[:MaxEntryLen]
	}
	return entry
}

func signed(v float64) string {
	d := decimal.NewFromFloat(v)
	if v < 0 {
		return "-" + d.Abs().StringFixed(2)
	}
	return "+" + d.StringFixed(2)
}

// formatDisplay concatenates every entry in registry order.
func formatDisplay(quotes []models.Quote) string {
	var b strings.Builder
	for _, q := range quotes {
		b.WriteString(formatEntry(q))
	}
	return b.String()
}
