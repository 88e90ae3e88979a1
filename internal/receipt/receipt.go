// Package receipt renders a finished check as fixed-width text suitable for a
// receipt printer, plus a minimal HTML wrapper for browsers.
package receipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"checkpos/internal/domain"
)

// ThankYouMessage closes every receipt.
const ThankYouMessage = "Thank you for your purchase!"

// DefaultLineWidth is the receipt width used when the caller does not ask for
// a specific one.
const DefaultLineWidth = 50

// Item is one sold line as it appears on the receipt.
type Item struct {
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Description string
	TotalPrice  decimal.Decimal
}

// Data is everything the renderer needs about one check.
type Data struct {
	OwnerName        string
	Items            []Item
	Total            decimal.Decimal
	PurchasingMethod domain.PurchasingMethod
	Rest             decimal.Decimal
	Date             time.Time
}

// Render lays out the receipt as a slice of lines, each padded to lineWidth.
// The amount column occupies the rightmost 20 characters of item and footer
// lines.
func Render(data Data, lineWidth int) []string {
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}

	var lines []string
	lines = append(lines, center(data.OwnerName, lineWidth))
	lines = append(lines, strings.Repeat("=", lineWidth))

	for _, item := range data.Items {
		left := item.Quantity.StringFixed(2) + " x " + FormatMoney(item.UnitPrice)
		lines = append(lines, ljust(left, lineWidth-20)+rjust(FormatMoney(item.TotalPrice), 20))
		lines = append(lines, item.Description)
		lines = append(lines, strings.Repeat("-", lineWidth))
	}

	lines = append(lines, strings.Repeat("=", lineWidth))
	lines = append(lines, rjust("SUM", lineWidth-20)+rjust(FormatMoney(data.Total), 20))
	lines = append(lines, rjust(string(data.PurchasingMethod), lineWidth-20)+rjust(FormatMoney(data.Total.Add(data.Rest)), 20))
	lines = append(lines, rjust("Rest", lineWidth-20)+rjust(FormatMoney(data.Rest), 20))
	lines = append(lines, strings.Repeat("=", lineWidth))
	lines = append(lines, center(data.Date.Format("2006-01-02 15:04:05"), lineWidth))
	lines = append(lines, center(ThankYouMessage, lineWidth))

	return lines
}

// ToHTML wraps rendered lines in a preformatted HTML document.
func ToHTML(lines []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>Receipt</title></head><body><pre>")
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString("<br>")
	}
	b.WriteString("</pre></body></html>")
	return b.String()
}

// FormatMoney renders an amount with two fractional digits and comma-grouped
// thousands, e.g. 1234.5 becomes "1,234.50".
func FormatMoney(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}

// center pads s with spaces on both sides to width; with odd padding the
// extra space goes on the right.
func center(s string, width int) string {
	gap := width - len(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

func ljust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func rjust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}
