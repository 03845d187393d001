package parse

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/portfolio-parser/internal/config"
	"fjacquet/portfolio-parser/internal/container"
	"fjacquet/portfolio-parser/internal/export"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Date,Type,Name,Symbol,Quantity,Price,Currency,Fee,Note,Proceeds,Proceeds ILS\n"

// testConfig returns a valid configuration that reads no file or environment.
func testConfig() *config.Config {
	return &config.Config{
		Log: config.LogConfig{Level: "info", Format: "text"},
		Redis: config.RedisConfig{
			URL:           "redis://localhost:6379",
			StreamKey:     "portfolio:jobs",
			ConsumerGroup: "portfolio-workers",
			ConsumerName:  "test-worker",
			BlockMS:       1000,
			MessageCount:  10,
		},
		Export: config.ExportConfig{Delimiter: ","},
	}
}

func setup(t *testing.T) (*container.Container, string) {
	t.Helper()
	dir := t.TempDir()
	first := header +
		"2024-01-15,Buy,Apple,AAPL,10,150,USD,1,,1500,5500\n" +
		"2024-01-20,Dividend,AAPL,,,,USD,,,2.4,\n"
	second := header +
		"2024-01-10,Deposit,,,,,ILS,,,10000,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte(first), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "early.csv"), []byte(second), 0600))

	c, err := container.NewContainer(testConfig(), logging.NewMockLogger())
	require.NoError(t, err)
	return c, dir
}

func TestRun_WritesJSONToStdout(t *testing.T) {
	c, dir := setup(t)
	var out bytes.Buffer

	result, err := Run(context.Background(), c, Options{
		Directory: dir,
		Files:     []string{"jan.csv", "early.csv"},
		JobID:     "local-1",
	}, &out)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.Purchases, 1)
	assert.Len(t, result.Dividends, 1)
	require.Len(t, result.Transfers, 1)
	assert.Equal(t, models.TransferDeposit, result.Transfers[0].Type)

	var decoded models.JobResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "local-1", decoded.JobID)
	assert.Equal(t, "AAPL", decoded.Dividends[0].CompanySymbol)
}

func TestRun_GeneratesJobID(t *testing.T) {
	c, dir := setup(t)

	result, err := Run(context.Background(), c, Options{Directory: dir, Files: []string{"jan.csv"}}, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = uuid.Parse(result.JobID)
	assert.NoError(t, err)
}

func TestRun_OutputFileAndCSV(t *testing.T) {
	c, dir := setup(t)
	out := filepath.Join(t.TempDir(), "result.json")
	csvDir := filepath.Join(t.TempDir(), "csv")
	var stdout bytes.Buffer

	_, err := Run(context.Background(), c, Options{
		Directory: dir,
		Files:     []string{"jan.csv", "missing.csv"},
		JobID:     "local-2",
		Output:    out,
		CSVDir:    csvDir,
	}, &stdout)
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "File missing.csv failed to load: File not found: missing.csv")

	assert.FileExists(t, filepath.Join(csvDir, export.PurchasesFile))
	errs, err := os.ReadFile(filepath.Join(csvDir, export.ErrorsFile))
	require.NoError(t, err)
	assert.Contains(t, string(errs), "missing.csv")
}

func TestRun_CancelledJob(t *testing.T) {
	c, dir := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, c, Options{Directory: dir, Files: []string{"jan.csv"}, JobID: "x"}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCommand_Metadata(t *testing.T) {
	assert.Equal(t, "parse [files...]", Cmd.Use)
	for _, name := range []string{"directory", "job-id", "output", "csv-dir"} {
		assert.NotNil(t, Cmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "d", Cmd.Flags().Lookup("directory").Shorthand)
}
