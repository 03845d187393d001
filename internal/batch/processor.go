// Package batch runs import jobs: it loads each file of a job in order,
// turns its rows into records and merges them into one chronological result.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/merger"
	"fjacquet/portfolio-parser/internal/models"
)

// Loader turns a file of a job directory into a table.
type Loader interface {
	Load(ctx context.Context, directory, filename string) (*models.Table, error)
}

// Categorizer classifies rows; *categorizer.Categorizer implements it.
type Categorizer interface {
	FindTypeColumn(table *models.Table) (string, bool)
	Categorize(row models.Row, typeColumn string) (models.Category, bool)
	DividendSymbol(table *models.Table, row models.Row, typeColumn string) (string, bool)
}

// Transformer builds records from rows; *transformer.Transformer implements it.
type Transformer interface {
	ToPurchase(table *models.Table, row models.Row) (models.Purchase, error)
	ToSale(table *models.Table, row models.Row) (models.Sale, error)
	ToDividend(table *models.Table, row models.Row, symbol *string) (models.Dividend, error)
	ToTax(table *models.Table, row models.Row, symbol *string) (models.Tax, error)
	ToTransfer(table *models.Table, row models.Row, kind models.TransferKind) (models.Transfer, error)
}

// Stage is the position of a job in its lifecycle.
type Stage string

const (
	StageInit            Stage = "init"
	StageProcessingFiles Stage = "processing_files"
	StageDone            Stage = "done"
)

// Processor runs jobs. All per-job state lives in the call to Process, so
// one Processor may serve concurrent jobs.
type Processor struct {
	loader      Loader
	categorizer Categorizer
	transformer Transformer
	logger      logging.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(loader Loader, c Categorizer, t Transformer, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Processor{
		loader:      loader,
		categorizer: c,
		transformer: t,
		logger:      logger,
	}
}

// Process runs every file of req in order and returns the combined result.
// File and row problems become diagnostics in the result; only a cancelled
// context fails the job, in which case partial results are discarded.
func (p *Processor) Process(ctx context.Context, req models.JobRequest) (*models.JobResult, error) {
	start := time.Now()
	logger := p.logger.WithFields(logging.Field{Key: logging.FieldJobID, Value: req.JobID})
	acc := newAccumulation(req.JobID)

	logger.Info("Starting job",
		logging.Field{Key: logging.FieldDirectory, Value: req.Directory},
		logging.Field{Key: logging.FieldFileCount, Value: len(req.Files)},
		logging.Field{Key: logging.FieldStage, Value: StageInit})

	for i, filename := range req.Files {
		if err := ctx.Err(); err != nil {
			logger.WithError(err).Warn("Job cancelled, discarding partial results",
				logging.Field{Key: logging.FieldStage, Value: StageProcessingFiles},
				logging.Field{Key: "file_index", Value: i})
			return nil, fmt.Errorf("job %s cancelled: %w", req.JobID, err)
		}
		p.processFile(ctx, logger, acc, req.Directory, filename)
	}

	result := acc.result()
	logger.Info("Job complete",
		logging.Field{Key: logging.FieldStage, Value: StageDone},
		logging.Field{Key: "purchases", Value: len(result.Purchases)},
		logging.Field{Key: "sales", Value: len(result.Sales)},
		logging.Field{Key: "dividends", Value: len(result.Dividends)},
		logging.Field{Key: "taxes", Value: len(result.Taxes)},
		logging.Field{Key: "transfers", Value: len(result.Transfers)},
		logging.Field{Key: logging.FieldErrorCount, Value: len(result.Errors)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).Milliseconds()})
	return result, nil
}

func (p *Processor) processFile(ctx context.Context, logger logging.Logger, acc *accumulation, directory, filename string) {
	logger = logger.WithFields(logging.Field{Key: logging.FieldFile, Value: filename})
	logger.Info("Processing file")

	table, err := p.load(ctx, directory, filename)
	if err != nil {
		logger.WithError(err).Warn("File failed to load")
		acc.addError("File %s failed to load: %v", filename, err)
		return
	}
	if err := validateTable(table, filename); err != nil {
		logger.WithError(err).Warn("File failed validation")
		acc.addError("File %s validation failed: %v", filename, err)
		return
	}

	typeColumn, found := p.categorizer.FindTypeColumn(table)
	if !found {
		acc.addError("File %s: Could not find transaction type column. Available columns: %s",
			filename, formatColumns(table.Columns))
		logger.Warn("No transaction type column")
	}

	buckets := &fileBuckets{}
	for i, row := range table.Rows {
		if msg, failed := p.processRow(table, row, typeColumn, buckets); failed {
			acc.addError("File %s, row %d: %s", filename, i+1, msg)
			logger.Debug("Row dropped",
				logging.Field{Key: logging.FieldRow, Value: i + 1},
				logging.Field{Key: logging.FieldError, Value: msg})
		}
	}

	buckets.sort()
	acc.merge(logger, buckets)

	logger.Info("File processed",
		logging.Field{Key: "purchases", Value: len(buckets.purchases)},
		logging.Field{Key: "sales", Value: len(buckets.sales)},
		logging.Field{Key: "dividends", Value: len(buckets.dividends)},
		logging.Field{Key: "taxes", Value: len(buckets.taxes)},
		logging.Field{Key: "transfers", Value: len(buckets.transfers)})
}

// load calls the loader, turning a panic inside a workbook decoder into a
// load error so one malformed file cannot abort the job.
func (p *Processor) load(ctx context.Context, directory, filename string) (table *models.Table, err error) {
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("unexpected error reading %s: %v", filename, r)
		}
	}()
	return p.loader.Load(ctx, directory, filename)
}

// processRow categorizes and transforms one row into buckets. It returns the
// diagnostic text when the row fails; rows of no category are skipped
// silently. A panic while handling the row is recovered and reported.
func (p *Processor) processRow(table *models.Table, row models.Row, typeColumn string, buckets *fileBuckets) (msg string, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			msg, failed = fmt.Sprintf("Error processing row: %v", r), true
		}
	}()

	category, ok := p.categorizer.Categorize(row, typeColumn)
	if !ok {
		return "", false
	}

	var err error
	switch category {
	case models.CategoryPurchase:
		var rec models.Purchase
		if rec, err = p.transformer.ToPurchase(table, row); err == nil {
			buckets.purchases = append(buckets.purchases, rec)
		}
	case models.CategorySale:
		var rec models.Sale
		if rec, err = p.transformer.ToSale(table, row); err == nil {
			buckets.sales = append(buckets.sales, rec)
		}
	case models.CategoryDividend:
		var symbol *string
		if s, found := p.categorizer.DividendSymbol(table, row, typeColumn); found {
			symbol = &s
		}
		var rec models.Dividend
		if rec, err = p.transformer.ToDividend(table, row, symbol); err == nil {
			buckets.dividends = append(buckets.dividends, rec)
		}
	case models.CategoryTax:
		var rec models.Tax
		if rec, err = p.transformer.ToTax(table, row, nil); err == nil {
			buckets.taxes = append(buckets.taxes, rec)
		}
	case models.CategoryDeposit, models.CategoryFee:
		kind := models.TransferDeposit
		if category == models.CategoryFee {
			kind = models.TransferCashHandlingFee
		}
		var rec models.Transfer
		if rec, err = p.transformer.ToTransfer(table, row, kind); err == nil {
			buckets.transfers = append(buckets.transfers, rec)
		}
	default:
		return "", false
	}

	if err != nil {
		return fmt.Sprintf("Failed to transform %s: %v", category, err), true
	}
	return "", false
}

// formatColumns renders labels as a bracketed, quoted list: ['Date', 'Amount'].
func formatColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = "'" + c + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// fileBuckets holds the records produced by one file.
type fileBuckets struct {
	purchases []models.Purchase
	sales     []models.Sale
	dividends []models.Dividend
	taxes     []models.Tax
	transfers []models.Transfer
}

func (b *fileBuckets) sort() {
	merger.SortByDate(b.purchases)
	merger.SortByDate(b.sales)
	merger.SortByDate(b.dividends)
	merger.SortByDate(b.taxes)
	merger.SortByDate(b.transfers)
}

// accumulation is the running result of one job.
type accumulation struct {
	jobID     string
	purchases []models.Purchase
	sales     []models.Sale
	dividends []models.Dividend
	taxes     []models.Tax
	transfers []models.Transfer
	errors    []string
}

func newAccumulation(jobID string) *accumulation {
	return &accumulation{jobID: jobID}
}

func (a *accumulation) addError(format string, args ...any) {
	a.errors = append(a.errors, fmt.Sprintf(format, args...))
}

func (a *accumulation) merge(logger logging.Logger, b *fileBuckets) {
	a.purchases = merger.Merge(logger, "purchases", a.purchases, b.purchases)
	a.sales = merger.Merge(logger, "sales", a.sales, b.sales)
	a.dividends = merger.Merge(logger, "dividends", a.dividends, b.dividends)
	a.taxes = merger.Merge(logger, "taxes", a.taxes, b.taxes)
	a.transfers = merger.Merge(logger, "transfers", a.transfers, b.transfers)
}

func (a *accumulation) result() *models.JobResult {
	r := models.NewJobResult(a.jobID)
	r.Purchases = append(r.Purchases, a.purchases...)
	r.Sales = append(r.Sales, a.sales...)
	r.Dividends = append(r.Dividends, a.dividends...)
	r.Taxes = append(r.Taxes, a.taxes...)
	r.Transfers = append(r.Transfers, a.transfers...)
	r.Errors = append(r.Errors, a.errors...)
	return r
}
