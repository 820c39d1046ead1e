// Package csvparse tokenizes delimited product exports.
//
// Parsing is purely mechanical and never fails: malformed quoting degrades to
// whatever field split is reachable instead of returning an error.
package csvparse

import "strings"

const bom = "\ufeff"

// Parse splits text into rows of fields. Quoted fields may contain commas,
// newlines and doubled quotes. Rows are separated by unquoted \n, \r\n or \r.
// Rows whose fields are all blank are dropped. The first row is returned like
// any other.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	flushRow := func() {
		row = append(row, field.String())
		field.Reset()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			row = append(row, field.String())
			field.Reset()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			flushRow()
		default:
			field.WriteByte(ch)
		}
	}
	flushRow()

	return rows
}

// Records treats the first row as a header and maps every following row to a
// header-keyed record. Missing trailing cells become empty strings.
func Records(text string) []map[string]string {
	rows := Parse(strings.TrimPrefix(text, bom))
	if len(rows) == 0 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(row) {
				record[h] = row[i]
			} else {
				record[h] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
