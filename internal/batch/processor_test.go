package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"fjacquet/portfolio-parser/internal/categorizer"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parser"
	"fjacquet/portfolio-parser/internal/store"
	"fjacquet/portfolio-parser/internal/transformer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date,Transaction Type,Description,Symbol,Quantity,Price,Currency,Fee,Rate,Proceeds,Proceeds ILS\n"

func newTestProcessor(t *testing.T, loader Loader) (*Processor, *logging.MockLogger) {
	t.Helper()
	rules, err := store.DefaultRules()
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	if loader == nil {
		loader = parser.NewFileLoader(logger)
	}
	return NewProcessor(
		loader,
		categorizer.NewCategorizer(rules, logger),
		transformer.NewTransformer(rules.Layout, logger),
		logger,
	), logger
}

func writeCSV(t *testing.T, dir, name string, rows ...string) {
	t.Helper()
	content := header + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestProcess_TwoFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "february.csv", "2023-02-01,Buy,,MSFT,1,250,USD")
	writeCSV(t, dir, "january.csv", "2023-01-15,Buy,,AAPL,10,150.5,USD")

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{
		JobID: "job-1", Directory: dir, Files: []string{"february.csv", "january.csv"},
	})
	require.NoError(t, err)

	assert.Equal(t, "job-1", result.JobID)
	require.Len(t, result.Purchases, 2)
	assert.Equal(t, "2023-01-15", result.Purchases[0].Date)
	assert.Equal(t, "AAPL", result.Purchases[0].CompanySymbol)
	assert.Equal(t, "2023-02-01", result.Purchases[1].Date)
	assert.Empty(t, result.Errors)
}

func TestProcess_ImpossibleDateKeepsResultSorted(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv",
		"2023-01-01,Buy,,A1,1,10,USD",
		"2023-02-30,Buy,,A2,1,10,USD",
		"2023-03-05,Buy,,A3,1,10,USD",
	)
	writeCSV(t, dir, "b.csv",
		"2023-02-01,Buy,,B1,1,10,USD",
		"2023-03-01,Buy,,B2,1,10,USD",
	)

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{
		JobID: "j", Directory: dir, Files: []string{"a.csv", "b.csv"},
	})
	require.NoError(t, err)
	require.Len(t, result.Purchases, 5)

	dates := make([]string, len(result.Purchases))
	for i, rec := range result.Purchases {
		dates[i] = rec.Date
	}
	assert.Equal(t, []string{"2023-01-01", "2023-02-01", "2023-02-30", "2023-03-01", "2023-03-05"}, dates)
}

func TestProcess_SameDateRowsKeepFileOrder(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "ties.csv",
		"2023-03-05,Buy,,X,1,10,USD",
		"2023-03-01,Buy,,C,1,10,USD",
		"2023-02-01,Buy,,Y,1,10,USD",
		"2023-03-01,Buy,,A,1,10,USD",
		"2023-03-01,Buy,,B,1,10,USD",
	)

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Directory: dir, Files: []string{"ties.csv"}})
	require.NoError(t, err)

	symbols := make([]string, len(result.Purchases))
	for i, rec := range result.Purchases {
		symbols[i] = rec.CompanySymbol
	}
	assert.Equal(t, []string{"Y", "C", "A", "B", "X"}, symbols)
}

func TestProcess_MergeLogsCarryJobAndFile(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "a.csv", "2023-01-15,Buy,,AAPL,10,150.5,USD")

	p, logger := newTestProcessor(t, nil)
	_, err := p.Process(context.Background(), models.JobRequest{JobID: "job-7", Directory: dir, Files: []string{"a.csv"}})
	require.NoError(t, err)

	var merges int
	for _, entry := range logger.GetEntriesByLevel("DEBUG") {
		if entry.Message != "Merging records" {
			continue
		}
		merges++
		fields := map[string]any{}
		for _, f := range entry.Fields {
			fields[f.Key] = f.Value
		}
		assert.Equal(t, "job-7", fields[logging.FieldJobID])
		assert.Equal(t, "a.csv", fields[logging.FieldFile])
	}
	assert.Equal(t, 5, merges, "one merge per record kind")
}

func TestProcess_AllKinds(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "all.csv",
		"2023-03-05,Sell,,AAPL,2,170,USD,1.5,,340,1250",
		"2023-03-01,Buy,,AAPL,10,150.5,USD",
		"2023-03-10,Dividend,,KO,,,USD,,,4.6,",
		"2023-03-10,Withholding Tax,,KO,,,USD,,,-0.69,",
		"2023-02-28,Deposit,,,,,ILS,,,\"1,000\",",
		"2023-03-31,Cash Handling Fee,,,,,USD,,,-2,",
		"2023-03-15,Interest,,,,,USD,,,1,",
	)

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Directory: dir, Files: []string{"all.csv"}})
	require.NoError(t, err)

	require.Len(t, result.Purchases, 1)
	require.Len(t, result.Sales, 1)
	assert.Equal(t, 1.5, *result.Sales[0].TransactionFee)
	require.Len(t, result.Dividends, 1)
	assert.Equal(t, "KO", result.Dividends[0].CompanySymbol)
	assert.Equal(t, 4.6, result.Dividends[0].Amount)
	require.Len(t, result.Taxes, 1)
	assert.Equal(t, "KO", *result.Taxes[0].CompanySymbol)
	require.Len(t, result.Transfers, 2)
	assert.Equal(t, models.TransferDeposit, result.Transfers[0].Type)
	assert.Equal(t, 1000.0, result.Transfers[0].Amount)
	assert.Equal(t, models.TransferCashHandlingFee, result.Transfers[1].Type)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 6, result.Total())
}

func TestProcess_DividendSymbolFromNextColumn(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "div.csv", "2023-03-10,Dividend,PEP,KO,,,USD,,,4.6,")

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Directory: dir, Files: []string{"div.csv"}})
	require.NoError(t, err)
	require.Len(t, result.Dividends, 1)
	assert.Equal(t, "PEP", result.Dividends[0].CompanySymbol)
}

func TestProcess_FileLevelDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "good.csv", "2023-01-15,Buy,,AAPL,10,150.5,USD")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.csv"), []byte(header), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notype.csv"), []byte("Date,Amount\n2023-01-15,5\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{
		JobID:     "j",
		Directory: dir,
		Files:     []string{"missing.csv", "empty.csv", "notype.csv", "notes.txt", "good.csv"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"File missing.csv failed to load: File not found: missing.csv",
		"File empty.csv validation failed: empty.csv: File is empty (no rows)",
		"File notype.csv: Could not find transaction type column. Available columns: ['Date', 'Amount']",
		"File notes.txt failed to load: Unsupported file type: notes.txt (must be .csv, .xlsx or .xls)",
	}, result.Errors)
	require.Len(t, result.Purchases, 1, "other files in the job are unaffected")
}

func TestProcess_RowTransformFailure(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "rows.csv",
		"2023-01-15,Buy,,AAPL,10,150.5,USD",
		"2023-01-16,Buy,,AAPL,,150.5,USD",
		"not-a-date,Dividend,,KO,,,USD,,,1,",
	)

	p, _ := newTestProcessor(t, nil)
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Directory: dir, Files: []string{"rows.csv"}})
	require.NoError(t, err)

	assert.Len(t, result.Purchases, 1)
	assert.Empty(t, result.Dividends)
	assert.Equal(t, []string{
		"File rows.csv, row 2: Failed to transform purchase: missing required field quantity",
		"File rows.csv, row 3: Failed to transform dividend: missing required field date",
	}, result.Errors)
}

// panickingCategorizer panics on rows whose type is "boom".
type panickingCategorizer struct {
	*categorizer.Categorizer
}

func (c panickingCategorizer) Categorize(row models.Row, col string) (models.Category, bool) {
	if row[col] == "boom" {
		panic("unexpected cell")
	}
	return c.Categorizer.Categorize(row, col)
}

func TestProcess_RecoversRowPanic(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "p.csv",
		"2023-01-15,boom,,AAPL,10,150.5,USD",
		"2023-01-16,Buy,,AAPL,1,150.5,USD",
	)

	rules, err := store.DefaultRules()
	require.NoError(t, err)
	logger := logging.NewMockLogger()
	p := NewProcessor(
		parser.NewFileLoader(logger),
		panickingCategorizer{categorizer.NewCategorizer(rules, logger)},
		transformer.NewTransformer(rules.Layout, logger),
		logger,
	)

	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Directory: dir, Files: []string{"p.csv"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"File p.csv, row 1: Error processing row: unexpected cell"}, result.Errors)
	assert.Len(t, result.Purchases, 1)
}

// fakeLoader serves tables from memory and cancels ctx after the first load.
type fakeLoader struct {
	tables map[string]*models.Table
	after  func()
}

func (f *fakeLoader) Load(_ context.Context, _, filename string) (*models.Table, error) {
	defer func() {
		if f.after != nil {
			f.after()
		}
	}()
	if t, ok := f.tables[filename]; ok {
		return t, nil
	}
	return nil, errors.New("File not found: " + filename)
}

// panickingLoader panics on bad.xls and serves every other file from memory.
type panickingLoader struct {
	fakeLoader
}

func (l *panickingLoader) Load(ctx context.Context, dir, filename string) (*models.Table, error) {
	if filename == "bad.xls" {
		panic("corrupt sector chain")
	}
	return l.fakeLoader.Load(ctx, dir, filename)
}

func TestProcess_RecoversLoaderPanic(t *testing.T) {
	table := &models.Table{
		Columns: []string{"Date", "Type", "X", "Symbol", "Qty", "Price"},
		Rows:    []models.Row{{"Date": "2023-01-01", "Type": "Buy", "X": nil, "Symbol": "A", "Qty": "1", "Price": "2"}},
	}
	loader := &panickingLoader{fakeLoader{tables: map[string]*models.Table{"good.csv": table}}}

	p, logger := newTestProcessor(t, loader)
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Files: []string{"bad.xls", "good.csv"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"File bad.xls failed to load: unexpected error reading bad.xls: corrupt sector chain",
	}, result.Errors)
	assert.Len(t, result.Purchases, 1)
	assert.True(t, logger.HasEntry("WARN", "File failed to load"))
}

func TestProcess_CancelledBetweenFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	table := &models.Table{
		Columns: []string{"Date", "Type"},
		Rows:    []models.Row{{"Date": "2023-01-01", "Type": "Buy"}},
	}
	loader := &fakeLoader{tables: map[string]*models.Table{"a.csv": table, "b.csv": table}, after: cancel}

	p, logger := newTestProcessor(t, loader)
	result, err := p.Process(ctx, models.JobRequest{JobID: "j", Files: []string{"a.csv", "b.csv"}})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, logger.HasEntry("WARN", "Job cancelled, discarding partial results"))
}

func TestProcess_EmptyJob(t *testing.T) {
	p, _ := newTestProcessor(t, &fakeLoader{})
	result, err := p.Process(context.Background(), models.JobRequest{JobID: "empty"})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.NotNil(t, result.Errors)
}

func TestProcess_ConcurrentJobsAreIsolated(t *testing.T) {
	table := &models.Table{
		Columns: []string{"Date", "Type", "X", "Symbol", "Qty", "Price"},
		Rows:    []models.Row{{"Date": "2023-01-01", "Type": "Buy", "X": nil, "Symbol": "A", "Qty": "1", "Price": "2"}},
	}
	p, _ := newTestProcessor(t, &fakeLoader{tables: map[string]*models.Table{"a.csv": table}})

	var wg sync.WaitGroup
	results := make([]*models.JobResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := p.Process(context.Background(), models.JobRequest{JobID: "j", Files: []string{"a.csv", "a.csv"}})
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Len(t, r.Purchases, 2)
	}
}
