package utils

import (
	"encoding/json"
	"strings"
)

// ExportCSV renders a header row plus data rows. Every field is
// double-quoted, matching the dashboard's download format, so N rows always
// produce N+1 lines.
func ExportCSV(header []string, rows [][]string) string {
	var b strings.Builder
	writeCSVRow(&b, header)
	for _, row := range rows {
		b.WriteString("\n")
		writeCSVRow(&b, row)
	}
	return b.String()
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"`)
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteString(`"`)
	}
}

// ExportJSON renders rows as a pretty-printed JSON array.
func ExportJSON(rows interface{}) (string, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
