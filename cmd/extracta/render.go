package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const maxCellWidth = 48

func renderTable(headers []string, rows [][]string) string {
	for i := range rows {
		for j := range rows[i] {
			rows[i][j] = truncate(rows[i][j], maxCellWidth)
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return cellStyle
		}).
		String()
}

func printTable(w io.Writer, title string, headers []string, rows [][]string) {
	if title != "" {
		fmt.Fprintln(w, titleStyle.Render(title))
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render("(no rows)"))
		return
	}
	fmt.Fprintln(w, renderTable(headers, rows))
}

// formatCell renders a report value. Decimals keep two places.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return x.StringFixed(2)
	case []byte:
		return string(x)
	case float64:
		return decimal.NewFromFloat(x).String()
	default:
		return fmt.Sprint(x)
	}
}

// formatAmount renders a signed amount with credit/debit colouring.
func formatAmount(in, out decimal.Decimal) string {
	if out.IsPositive() {
		return debitStyle.Render("-" + out.StringFixed(2))
	}
	return creditStyle.Render(in.StringFixed(2))
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return string(runes[:width-1]) + "…"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefID(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(*id)
}

func shortHash(h string) string {
	return truncate(h, 12)
}
