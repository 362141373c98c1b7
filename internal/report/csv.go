package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guarzo/cardprice/internal/model"
)

// columnAliases maps accepted input headers to card fields
var columnAliases = map[string]string{
	"name":        "name",
	"card_name":   "name",
	"series":      "series",
	"card_series": "series",
	"number":      "number",
	"card_number": "number",
	"type":        "type",
	"card_type":   "type",
}

// EstimateHeaders is the header row of an estimates report
var EstimateHeaders = []string{
	"name", "card_series", "card_number", "card_type",
	"query", "price_estimate", "price_low", "price_high",
	"confidence", "sales_count", "error",
}

// Row is one priced (or failed) card in a report
type Row struct {
	Fields   model.CardFields
	Estimate *model.PriceEstimate
	Err      error
}

// ReadCards parses a CSV of cards. The first row is a header; a name
// column is required and unknown columns are ignored.
func ReadCards(r io.Reader) ([]model.CardFields, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("card CSV is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := columnAliases[key]; ok {
			if _, dup := columns[field]; !dup {
				columns[field] = i
			}
		}
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("card CSV header %v has no name column", header)
	}

	cell := func(record []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var cards []model.CardFields
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		fields := model.CardFields{
			Name:   cell(record, "name"),
			Series: cell(record, "series"),
			Number: cell(record, "number"),
			Type:   cell(record, "type"),
		}
		if fields == (model.CardFields{}) {
			continue
		}
		cards = append(cards, fields)
	}

	return cards, nil
}

// WriteEstimates writes a report with one line per row, text cells
// escaped against formula injection.
func WriteEstimates(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(EstimateHeaders); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{row.Fields.Name, row.Fields.Series, row.Fields.Number, row.Fields.Type}
		record = EscapeCSVRow(record)

		if row.Estimate != nil {
			e := row.Estimate
			record = append(record,
				EscapeCSVCell(e.Query),
				formatPrice(e.Estimate),
				formatPrice(e.Low),
				formatPrice(e.High),
				formatPrice(e.Confidence),
				strconv.Itoa(e.SalesCount),
				"",
			)
		} else {
			msg := ""
			if row.Err != nil {
				msg = EscapeCSVCell(row.Err.Error())
			}
			record = append(record, "", "", "", "", "", "", msg)
		}

		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteEstimatesAndClose writes the report to w and closes it. A close
// failure is returned when the write itself succeeded.
func WriteEstimatesAndClose(w io.WriteCloser, rows []Row) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()
	return WriteEstimates(w, rows)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
