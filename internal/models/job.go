package models

// JobRequest is the descriptor of one import job: an ordered list of files
// located in a single directory.
type JobRequest struct {
	JobID     string   `json:"jobId"`
	Directory string   `json:"directory"`
	Files     []string `json:"files"`
	Step      string   `json:"step,omitempty"`
	Timestamp int64    `json:"timestamp,omitempty"`
}

// JobResult is the combined output of a job. Every record slice is sorted by
// date, non-decreasing. Errors holds diagnostics in the order they occurred.
type JobResult struct {
	JobID     string     `json:"jobId"`
	Purchases []Purchase `json:"purchases"`
	Sales     []Sale     `json:"sales"`
	Dividends []Dividend `json:"dividends"`
	Taxes     []Tax      `json:"taxes"`
	Transfers []Transfer `json:"transfers"`
	Errors    []string   `json:"errors"`
}

// NewJobResult returns an empty result whose slices serialize as [] rather
// than null.
func NewJobResult(jobID string) *JobResult {
	return &JobResult{
		JobID:     jobID,
		Purchases: []Purchase{},
		Sales:     []Sale{},
		Dividends: []Dividend{},
		Taxes:     []Tax{},
		Transfers: []Transfer{},
		Errors:    []string{},
	}
}

// Counts returns the number of records per kind.
func (r *JobResult) Counts() map[Kind]int {
	return map[Kind]int{
		KindPurchase: len(r.Purchases),
		KindSale:     len(r.Sales),
		KindDividend: len(r.Dividends),
		KindTax:      len(r.Taxes),
		KindTransfer: len(r.Transfers),
	}
}

// Total returns the number of records across all kinds.
func (r *JobResult) Total() int {
	return len(r.Purchases) + len(r.Sales) + len(r.Dividends) + len(r.Taxes) + len(r.Transfers)
}
