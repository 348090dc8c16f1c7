package view

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/Togather-Foundation/promotions-console/internal/sanitize"
)

// Columns is the fixed header of the results table.
var Columns = []string{"ID", "Title", "Type", "Start_Date", "End_Date", "Active"}

// columnWidths are the HTML column widths, in percent.
var columnWidths = []int{10, 20, 20, 20, 20, 10}

// Row is one promotion as displayed in the table.
type Row struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	PromotionType string   `json:"promotion_type"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Active        string   `json:"active"`
	InvalidDates  []string `json:"invalid_dates,omitempty"`
}

// NewRow builds the display row for p. Dates that cannot be normalized are
// kept raw and listed in InvalidDates.
func NewRow(p promotions.Promotion) Row {
	row := Row{
		ID:            p.ID.String(),
		Title:         p.Title,
		PromotionType: p.PromotionType,
		Active:        strconv.FormatBool(p.Active),
	}

	var err error
	if row.StartDate, err = promotions.DisplayDate(p.StartDate); err != nil {
		row.InvalidDates = append(row.InvalidDates, promotions.FieldStartDate)
	}
	if row.EndDate, err = promotions.DisplayDate(p.EndDate); err != nil {
		row.InvalidDates = append(row.InvalidDates, promotions.FieldEndDate)
	}
	return row
}

// Cells returns the row values in column order.
func (r Row) Cells() []string {
	return []string{r.ID, r.Title, r.PromotionType, r.StartDate, r.EndDate, r.Active}
}

// Table is the search results table. A table that has never been rendered
// has no header.
type Table struct {
	Header []string `json:"header,omitempty"`
	Rows   []Row    `json:"rows"`
}

// Render replaces the table contents with items, in order, and returns the
// first item. ok is false when items is empty.
func (t *Table) Render(items []promotions.Promotion) (first promotions.Promotion, ok bool) {
	t.Header = append([]string(nil), Columns...)
	t.Rows = make([]Row, 0, len(items))
	for _, item := range items {
		t.Rows = append(t.Rows, NewRow(item))
	}

	if len(items) == 0 {
		return promotions.Promotion{}, false
	}
	return items[0], true
}

// Rendered reports whether Render has been called.
func (t Table) Rendered() bool {
	return t.Header != nil
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	clone := Table{}
	if t.Header != nil {
		clone.Header = append([]string(nil), t.Header...)
	}
	if t.Rows != nil {
		clone.Rows = make([]Row, len(t.Rows))
		for i, row := range t.Rows {
			if row.InvalidDates != nil {
				row.InvalidDates = append([]string(nil), row.InvalidDates...)
			}
			clone.Rows[i] = row
		}
	}
	return clone
}

// HTML renders the table as an HTML fragment. Cell text is sanitized.
// An unrendered table produces an empty string.
func (t Table) HTML() string {
	if !t.Rendered() {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<table class="table-bordered" cellpadding="10">` + "\n")
	b.WriteString("  <tr>")
	for i, column := range t.Header {
		width := 10
		if i < len(columnWidths) {
			width = columnWidths[i]
		}
		fmt.Fprintf(&b, `<th style="width:%d%%">%s</th>`, width, sanitize.Text(column))
	}
	b.WriteString("</tr>\n")

	for _, row := range t.Rows {
		b.WriteString("  <tr>")
		for _, cell := range sanitize.TextSlice(row.Cells()) {
			fmt.Fprintf(&b, "<td>%s</td>", cell)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>")
	return b.String()
}

// WriteText writes the table as aligned plain text.
func (t Table) WriteText(out io.Writer) error {
	if !t.Rendered() {
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.Header, "\t"))
	dashes := make([]string, len(t.Header))
	for i, column := range t.Header {
		dashes[i] = strings.Repeat("-", len(column))
	}
	fmt.Fprintln(w, strings.Join(dashes, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(w, strings.Join(row.Cells(), "\t"))
	}
	return w.Flush()
}
