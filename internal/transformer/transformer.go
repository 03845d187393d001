// Package transformer turns categorized rows into typed transaction records,
// reading each field from a fixed column position.
package transformer

import (
	"fjacquet/portfolio-parser/internal/currencyutils"
	"fjacquet/portfolio-parser/internal/dateutils"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"
)

// Transformer maps rows to records using a ColumnLayout. It is read-only
// after construction and safe for concurrent use.
type Transformer struct {
	layout models.ColumnLayout
	logger logging.Logger
}

// NewTransformer creates a Transformer for the given layout.
func NewTransformer(layout models.ColumnLayout, logger logging.Logger) *Transformer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Transformer{layout: layout, logger: logger}
}

// Layout returns the column layout in use.
func (t *Transformer) Layout() models.ColumnLayout {
	return t.layout
}

// ToPurchase builds a Purchase. Date, quantity and unit price are required.
func (t *Transformer) ToPurchase(table *models.Table, row models.Row) (models.Purchase, error) {
	trade, err := t.trade(table, row, string(models.KindPurchase))
	if err != nil {
		return models.Purchase{}, err
	}
	return models.Purchase{Trade: trade}, nil
}

// ToSale builds a Sale with the same mapping as ToPurchase.
func (t *Transformer) ToSale(table *models.Table, row models.Row) (models.Sale, error) {
	trade, err := t.trade(table, row, string(models.KindSale))
	if err != nil {
		return models.Sale{}, err
	}
	return models.Sale{Trade: trade}, nil
}

// ToDividend builds a Dividend. A nil symbol means the symbol is read from
// the company symbol position; a blank one becomes "".
func (t *Transformer) ToDividend(table *models.Table, row models.Row, symbol *string) (models.Dividend, error) {
	kind := string(models.KindDividend)
	date, err := t.date(table, row, kind)
	if err != nil {
		return models.Dividend{}, err
	}
	amount, err := t.amount(table, row, kind)
	if err != nil {
		return models.Dividend{}, err
	}

	company := ""
	if symbol != nil {
		company = *symbol
	} else {
		company = table.CellString(row, t.layout.CompanySymbol)
	}

	return models.Dividend{
		Date:          date,
		CompanySymbol: company,
		Amount:        amount,
		Currency:      t.currency(table, row),
	}, nil
}

// ToTax builds a Tax. A nil symbol means the symbol is read from the company
// symbol position; when that cell is blank the record carries no symbol.
func (t *Transformer) ToTax(table *models.Table, row models.Row, symbol *string) (models.Tax, error) {
	kind := string(models.KindTax)
	date, err := t.date(table, row, kind)
	if err != nil {
		return models.Tax{}, err
	}
	amount, err := t.amount(table, row, kind)
	if err != nil {
		return models.Tax{}, err
	}

	company := symbol
	if company == nil {
		if s := table.CellString(row, t.layout.CompanySymbol); s != "" {
			company = models.String(s)
		}
	}

	return models.Tax{
		Date:          date,
		CompanySymbol: company,
		Amount:        amount,
		Currency:      t.currency(table, row),
	}, nil
}

// ToTransfer builds a Transfer of the given kind.
func (t *Transformer) ToTransfer(table *models.Table, row models.Row, kind models.TransferKind) (models.Transfer, error) {
	date, err := t.date(table, row, string(kind))
	if err != nil {
		return models.Transfer{}, err
	}
	amount, err := t.amount(table, row, string(kind))
	if err != nil {
		return models.Transfer{}, err
	}
	return models.Transfer{
		Date:     date,
		Type:     kind,
		Amount:   amount,
		Currency: t.currency(table, row),
	}, nil
}

func (t *Transformer) trade(table *models.Table, row models.Row, kind string) (models.Trade, error) {
	date, err := t.date(table, row, kind)
	if err != nil {
		return models.Trade{}, err
	}
	quantity, ok := t.number(table, row, t.layout.Quantity)
	if !ok {
		return models.Trade{}, &parsererror.TransformError{Kind: kind, Field: "quantity"}
	}
	unitPrice, ok := t.number(table, row, t.layout.UnitPrice)
	if !ok {
		return models.Trade{}, &parsererror.TransformError{Kind: kind, Field: "unit_price"}
	}

	return models.Trade{
		Date:            date,
		CompanySymbol:   table.CellString(row, t.layout.CompanySymbol),
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		Currency:        t.currency(table, row),
		TransactionFee:  t.optional(table, row, t.layout.TransactionFee),
		ProceedsForeign: t.optional(table, row, t.layout.ProceedsForeign),
		ProceedsILS:     t.optional(table, row, t.layout.ProceedsILS),
	}, nil
}

func (t *Transformer) date(table *models.Table, row models.Row, kind string) (string, error) {
	value, _ := table.Cell(row, t.layout.Date)
	date, ok := dateutils.NormalizeDate(value)
	if !ok {
		return "", &parsererror.TransformError{Kind: kind, Field: "date"}
	}
	return date, nil
}

// amount returns the first parseable value along the fallback chain.
func (t *Transformer) amount(table *models.Table, row models.Row, kind string) (float64, error) {
	for _, pos := range t.layout.AmountFallback {
		if v, ok := t.number(table, row, pos); ok {
			return v, nil
		}
	}
	return 0, &parsererror.TransformError{Kind: kind, Field: "amount"}
}

func (t *Transformer) currency(table *models.Table, row models.Row) string {
	if c := table.CellString(row, t.layout.Currency); c != "" {
		return c
	}
	return models.DefaultCurrency
}

func (t *Transformer) number(table *models.Table, row models.Row, pos int) (float64, bool) {
	value, ok := table.Cell(row, pos)
	if !ok {
		return 0, false
	}
	return currencyutils.ParseNumber(value)
}

func (t *Transformer) optional(table *models.Table, row models.Row, pos int) *float64 {
	if v, ok := t.number(table, row, pos); ok {
		return models.Float(v)
	}
	return nil
}
