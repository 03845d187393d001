package models

// Kind identifies one of the five record variants.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSale     Kind = "sale"
	KindDividend Kind = "dividend"
	KindTax      Kind = "tax"
	KindTransfer Kind = "transfer"
)

// TransferKind distinguishes cash deposits from cash handling fees.
type TransferKind string

const (
	TransferDeposit         TransferKind = "deposit"
	TransferCashHandlingFee TransferKind = "cash_handling_fee"
)

// Dated is satisfied by anything carrying an ISO (YYYY-MM-DD) date.
type Dated interface {
	TxDate() string
}

// Record is the closed set of canonical transaction records. Only the types
// in this package implement it.
type Record interface {
	Dated
	Kind() Kind
	record()
}

// Trade holds the fields shared by purchases and sales.
type Trade struct {
	Date            string   `json:"date" csv:"date"`
	CompanySymbol   string   `json:"company_symbol" csv:"company_symbol"`
	Quantity        float64  `json:"quantity" csv:"quantity"`
	UnitPrice       float64  `json:"unit_price" csv:"unit_price"`
	Currency        string   `json:"currency" csv:"currency"`
	TransactionFee  *float64 `json:"transaction_fee" csv:"transaction_fee"`
	ProceedsForeign *float64 `json:"proceeds_foreign" csv:"proceeds_foreign"`
	ProceedsILS     *float64 `json:"proceeds_ils" csv:"proceeds_ils"`
}

// Purchase is a buy of a security.
type Purchase struct {
	Trade
}

// Sale is a sell of a security. It has the same shape as Purchase.
type Sale struct {
	Trade
}

// Dividend is a dividend payout.
type Dividend struct {
	Date          string  `json:"date" csv:"date"`
	CompanySymbol string  `json:"company_symbol" csv:"company_symbol"`
	Amount        float64 `json:"amount" csv:"amount"`
	Currency      string  `json:"currency" csv:"currency"`
}

// Tax is a tax deduction such as dividend withholding. CompanySymbol is nil
// when the row names no security.
type Tax struct {
	Date          string  `json:"date" csv:"date"`
	CompanySymbol *string `json:"company_symbol" csv:"company_symbol"`
	Amount        float64 `json:"amount" csv:"amount"`
	Currency      string  `json:"currency" csv:"currency"`
}

// Transfer is a cash movement: a deposit or a cash handling fee.
type Transfer struct {
	Date     string       `json:"date" csv:"date"`
	Type     TransferKind `json:"type" csv:"type"`
	Amount   float64      `json:"amount" csv:"amount"`
	Currency string       `json:"currency" csv:"currency"`
}

func (p Purchase) TxDate() string { return p.Date }
func (s Sale) TxDate() string     { return s.Date }
func (d Dividend) TxDate() string { return d.Date }
func (t Tax) TxDate() string      { return t.Date }
func (t Transfer) TxDate() string { return t.Date }

func (Purchase) Kind() Kind { return KindPurchase }
func (Sale) Kind() Kind     { return KindSale }
func (Dividend) Kind() Kind { return KindDividend }
func (Tax) Kind() Kind      { return KindTax }
func (Transfer) Kind() Kind { return KindTransfer }

func (Purchase) record() {}
func (Sale) record()     {}
func (Dividend) record() {}
func (Tax) record()      {}
func (Transfer) record() {}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s, for optional text fields.
func String(s string) *string {
	return &s
}
