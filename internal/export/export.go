// Package export writes job results as JSON or as one CSV file per record kind.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"

	"github.com/gocarina/gocsv"
)

// File names written by WriteCSV.
const (
	PurchasesFile = "purchases.csv"
	SalesFile     = "sales.csv"
	DividendsFile = "dividends.csv"
	TaxesFile     = "taxes.csv"
	TransfersFile = "transfers.csv"
	ErrorsFile    = "errors.csv"
)

type errorRow struct {
	Error string `csv:"error"`
}

// WriteJSON writes result as indented JSON.
func WriteJSON(w io.Writer, result *models.JobResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("error writing JSON result: %w", err)
	}
	return nil
}

// WriteJSONFile writes result as indented JSON to path, creating parent
// directories.
func WriteJSONFile(path string, result *models.JobResult) error {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating JSON file: %w", err)
	}
	if err := WriteJSON(f, result); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// CSVWriter writes each record kind of a result to its own CSV file.
type CSVWriter struct {
	Delimiter rune
	logger    logging.Logger
}

// NewCSVWriter creates a comma-delimited CSVWriter.
func NewCSVWriter(logger logging.Logger) *CSVWriter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &CSVWriter{Delimiter: ',', logger: logger}
}

// WriteCSV writes result into dir. Every file is written, with a header
// row, even when it has no records. Absent optional values are empty cells.
func (c *CSVWriter) WriteCSV(dir string, result *models.JobResult) error {
	if result == nil {
		return fmt.Errorf("cannot write nil result to CSV")
	}
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	errs := make([]errorRow, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = errorRow{Error: e}
	}

	files := []struct {
		name string
		rows interface{}
		n    int
	}{
		{PurchasesFile, nonNil(result.Purchases), len(result.Purchases)},
		{SalesFile, nonNil(result.Sales), len(result.Sales)},
		{DividendsFile, nonNil(result.Dividends), len(result.Dividends)},
		{TaxesFile, nonNil(result.Taxes), len(result.Taxes)},
		{TransfersFile, nonNil(result.Transfers), len(result.Transfers)},
		{ErrorsFile, &errs, len(errs)},
	}
	for _, f := range files {
		if err := c.writeFile(filepath.Join(dir, f.name), f.rows); err != nil {
			return err
		}
		c.logger.Debug("Wrote CSV file",
			logging.F(logging.FieldFile, f.name),
			logging.F(logging.FieldCount, f.n))
	}

	c.logger.Info("Exported job result to CSV",
		logging.F(logging.FieldJobID, result.JobID),
		logging.F(logging.FieldDirectory, dir),
		logging.F(logging.FieldCount, result.Total()))
	return nil
}

func (c *CSVWriter) writeFile(path string, rows interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			c.logger.WithError(err).Warn("Failed to close file")
		}
	}()

	w := csv.NewWriter(file)
	w.Comma = c.Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return fmt.Errorf("error writing CSV data to %s: %w", filepath.Base(path), err)
	}
	return nil
}

// nonNil returns a pointer to s, replacing a nil slice with an empty one so
// gocsv still sees the element type.
func nonNil[T any](s []T) *[]T {
	if s == nil {
		s = []T{}
	}
	return &s
}
