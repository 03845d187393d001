package models

// Category is the outcome of classifying a row's transaction-type text.
type Category string

// Categories in priority order. When a type text matches keywords of more
// than one category, the earliest in CategoryOrder wins.
const (
	CategoryPurchase Category = "purchase"
	CategorySale     Category = "sale"
	CategoryDividend Category = "dividend"
	CategoryTax      Category = "tax"
	CategoryDeposit  Category = "deposit"
	CategoryFee      Category = "fee"
)

// CategoryOrder lists the categories in the order they are tested.
var CategoryOrder = []Category{
	CategoryPurchase,
	CategorySale,
	CategoryDividend,
	CategoryTax,
	CategoryDeposit,
	CategoryFee,
}

// DefaultCurrency applies when a row leaves the currency cell blank.
const DefaultCurrency = "USD"

// File permissions
const (
	PermissionFile      = 0600
	PermissionDirectory = 0750
)
