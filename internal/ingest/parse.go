package ingest

import (
	"regexp"
	"strings"

	"github.com/jask/extracta/internal/normalize"
)

var (
	dateToken   = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})$`)
	amountToken = regexp.MustCompile(`^[-+]?[€$£]?(\d{1,3}(,\d{3})+|\d+)\.\d{2}$`)
)

// isDate rejects date-shaped noise such as 13/13/2025 so it cannot fail the
// whole document later.
func isDate(tok string) bool {
	if !dateToken.MatchString(tok) {
		return false
	}
	_, err := normalize.NormalizeDate(tok)
	return err == nil
}

// ParseLines turns statement lines into Date/Description/Amount rows. The
// first parseable date token is the date and the last two-decimal number is the
// amount; everything else is description. Lines without a date are dropped
// and lines without an amount get "0.00".
func ParseLines(lines []Line) []normalize.RawRow {
	var rows []normalize.RawRow
	for _, l := range lines {
		tokens := strings.Fields(l.RawText)
		dateIdx := -1
		for i, t := range tokens {
			if isDate(t) {
				dateIdx = i
				break
			}
		}
		if dateIdx < 0 {
			continue
		}
		amountIdx := -1
		for i := len(tokens) - 1; i >= 0; i-- {
			if i != dateIdx && amountToken.MatchString(tokens[i]) {
				amountIdx = i
				break
			}
		}
		amount := "0.00"
		if amountIdx >= 0 {
			amount = strings.TrimPrefix(tokens[amountIdx], "+")
		}
		desc := make([]string, 0, len(tokens))
		for i, t := range tokens {
			if i != dateIdx && i != amountIdx {
				desc = append(desc, t)
			}
		}
		rows = append(rows, normalize.RawRow{
			normalize.KeyDate:        tokens[dateIdx],
			normalize.KeyDescription: strings.Join(desc, " "),
			normalize.KeyAmount:      amount,
		})
	}
	return rows
}
