package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"

	"golang.org/x/net/html/charset"
)

// FallbackEncoding is used for CSV files that are not valid UTF-8.
const FallbackEncoding = "latin1"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads comma-separated exports.
type CSVParser struct {
	BaseParser
}

// NewCSVParser creates a CSVParser.
func NewCSVParser(logger logging.Logger) *CSVParser {
	return &CSVParser{BaseParser: NewBaseParser(logger)}
}

// Parse reads path as UTF-8, or as latin1 when it is not valid UTF-8.
func (p *CSVParser) Parse(ctx context.Context, path string) (*models.Table, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from the job directory
	if err != nil {
		return nil, fmt.Errorf("error reading CSV file: %w", err)
	}
	name := filepath.Base(path)

	var r io.Reader = bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))
	encoding := "utf-8"
	if !utf8.Valid(data) {
		r, err = charset.NewReaderLabel(FallbackEncoding, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("could not decode CSV file %s: %w", name, err)
		}
		encoding = FallbackEncoding
	}

	records, err := readRecords(ctx, r, name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty: %s", name)
	}

	table := BuildTable(name, records)
	if len(table.Columns) == 0 {
		return nil, fmt.Errorf("CSV file is empty: %s", name)
	}

	p.logger.Debug("Loaded CSV file",
		logging.Field{Key: logging.FieldFile, Value: name},
		logging.Field{Key: "encoding", Value: encoding},
		logging.Field{Key: logging.FieldCount, Value: len(table.Rows)})
	return table, nil
}

func readRecords(ctx context.Context, r io.Reader, name string) ([][]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]any
	for {
		if len(records)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.Line
			}
			return nil, &parsererror.ParseError{
				Parser: "CSV",
				Field:  "line",
				Value:  fmt.Sprintf("%s:%d", name, line),
				Err:    err,
			}
		}
		records = append(records, stringsToRecord(fields))
	}
	return records, nil
}
