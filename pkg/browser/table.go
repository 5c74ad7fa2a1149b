package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Row is one extracted table row. Columns keeps the source order.
type Row struct {
	Columns []string
	Values  map[string]string
}

// Get returns the value of column, or "" when the row has no such column.
func (r Row) Get(column string) string {
	return r.Values[column]
}

// Table is the result of ExtractTable.
type Table struct {
	// Columns is the union of row columns in first-seen order.
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Maps returns the rows as plain maps.
func (t Table) Maps() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, r := range t.Rows {
		m := make(map[string]string, len(r.Values))
		for k, v := range r.Values {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

// Records returns the header followed by one record per row.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+1)
	records = append(records, append([]string(nil), t.Columns...))
	for _, r := range t.Rows {
		record := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			record[i] = r.Values[c]
		}
		records = append(records, record)
	}
	return records
}

// ExtractTable waits for the table at loc and returns its rows in DOM order.
// With a header (the default) the first row's th cells name the columns;
// otherwise columns are named col_0..col_{k-1} from the first row's td count.
// Rows without td cells are skipped.
func (b *Browser) ExtractTable(ctx context.Context, loc Locator, opts ...ActionOption) (Table, error) {
	o := b.actionOptions(opts)
	var table Table
	err := b.run(ctx, "extract_table", b.tableRetry, nil, func(ctx context.Context) error {
		el, err := b.find(ctx, loc, o.timeout)
		if err != nil {
			return err
		}
		markup, err := el.OuterHTML()
		if err != nil {
			return fmt.Errorf("read table markup of %s: %w", loc, err)
		}
		parsed, err := ParseTable(markup, !o.noHeader)
		if err != nil {
			return err
		}
		table = parsed
		return nil
	})
	if err == nil {
		b.logger.Infof("extracted %d rows from %s", table.Len(), loc)
	}
	return table, err
}

// ParseTable extracts rows from table markup. The root may be the table itself
// or one of its sections (thead, tbody, tfoot) or a single tr.
func ParseTable(markup string, hasHeader bool) (Table, error) {
	if isTablePart(rootTag(markup)) {
		markup = "<table>" + markup + "</table>"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Table{}, fmt.Errorf("failed to parse table: %w", err)
	}

	rows := doc.Find("tr")
	if rows.Length() == 0 {
		return Table{}, nil
	}

	var headers []string
	dataRows := rows
	first := rows.First()

	if hasHeader && first.Find("th").Length() > 0 {
		first.Find("th").Each(func(i int, th *goquery.Selection) {
			name := cellText(th)
			if name == "" {
				name = ordinal(i)
			}
			headers = append(headers, name)
		})
		dataRows = rows.Slice(1, rows.Length())
	} else {
		for i := 0; i < first.Find("td").Length(); i++ {
			headers = append(headers, ordinal(i))
		}
	}

	table := Table{Columns: append([]string(nil), headers...)}
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}

	dataRows.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		row := Row{
			Columns: append([]string(nil), headers...),
			Values:  make(map[string]string, len(headers)),
		}
		for _, h := range headers {
			row.Values[h] = ""
		}
		cells.Each(func(i int, td *goquery.Selection) {
			column := ordinal(i)
			if i < len(headers) {
				column = headers[i]
			} else {
				row.Columns = append(row.Columns, column)
				if !seen[column] {
					seen[column] = true
					table.Columns = append(table.Columns, column)
				}
			}
			row.Values[column] = cellText(td)
		})
		table.Rows = append(table.Rows, row)
	})

	return table, nil
}

// rootTag returns the name of the first start tag in markup.
func rootTag(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return string(name)
		}
	}
}

func isTablePart(tag string) bool {
	switch tag {
	case "thead", "tbody", "tfoot", "tr":
		return true
	}
	return false
}

// cellText approximates the rendered text of a cell: br and block elements
// break lines, hidden elements are skipped and whitespace is collapsed.
func cellText(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		if hidden(n) {
			continue
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			renderText(&sb, c)
		}
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func renderText(sb *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		sb.WriteByte('\n')
		return
	case "script", "style", "template", "noscript":
		return
	}
	if hidden(n) {
		return
	}

	block := blockElements[n.Data]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(sb, c)
	}
	if block {
		sb.WriteByte('\n')
	}
}

var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

// hidden reports whether n is hidden by the hidden attribute or its inline
// style.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "hidden":
			return true
		case "style":
			style := strings.ToLower(strings.Join(strings.Fields(a.Val), ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func ordinal(i int) string {
	return fmt.Sprintf("col_%d", i)
}
