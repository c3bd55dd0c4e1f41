package series

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{"date", "osa_pct"}

// ExportFilename is the download name of a CSV export for mode.
func ExportFilename(mode GroupMode) string {
	return "osa_series_" + string(mode) + ".csv"
}

// WriteCSV writes the header and one row per bucket. Rows are separated by
// "\n" and the last row has no terminator.
func WriteCSV(w io.Writer, buckets []Bucket) error {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range buckets {
		if err := cw.Write([]string{b.Key, formatValue(b.Value)}); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// CSV is WriteCSV into a string.
func CSV(buckets []Bucket) string {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, buckets)
	return buf.String()
}

// formatValue prints the shortest decimal form: 90, 92.5, 87.33.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
