package format

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"tabdiff/pkg/table"
)

// XML renders the sequence as a <table> document with one <row> element per
// row. Non-null fields become attributes; null fields are omitted.
func XML(next table.RowIter) (string, error) {
	var b strings.Builder
	b.WriteString("<table>")
	for {
		r, ok := next()
		if !ok {
			break
		}
		headers := make([]string, 0, len(r))
		for h := range r {
			if !r[h].IsNull() {
				headers = append(headers, h)
			}
		}
		sort.Strings(headers)
		b.WriteString("\n\t<row")
		for _, h := range headers {
			b.WriteByte(' ')
			b.WriteString(h)
			b.WriteString(`="`)
			if err := escapeXML(&b, r[h].String()); err != nil {
				return "", err
			}
			b.WriteByte('"')
		}
		b.WriteString("/>")
	}
	b.WriteString("\n</table>")
	return b.String(), nil
}

func escapeXML(w io.Writer, s string) error {
	return xml.EscapeText(w, []byte(s))
}

// ParseXML is the inverse of XML: each <row> element of the root becomes a
// row, with its attributes as fields. Attribute values go through the same
// type inference as CSV fields.
func ParseXML(text string) ([]table.Row, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	var rows []table.Row
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse xml")
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "row" {
			continue
		}
		row := make(table.Row, len(start.Attr))
		for _, attr := range start.Attr {
			row[attr.Name.Local] = inferValue(attr.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
