package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobResult_EmptyListsSerializeAsArrays(t *testing.T) {
	data, err := json.Marshal(NewJobResult("job-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"jobId": "job-1",
		"purchases": [],
		"sales": [],
		"dividends": [],
		"taxes": [],
		"transfers": [],
		"errors": []
	}`, string(data))
}

func TestJobResult_Counts(t *testing.T) {
	r := NewJobResult("job-2")
	r.Sales = append(r.Sales, Sale{}, Sale{})
	r.Transfers = append(r.Transfers, Transfer{})
	r.Errors = append(r.Errors, "ignored")

	counts := r.Counts()
	assert.Equal(t, 2, counts[KindSale])
	assert.Equal(t, 1, counts[KindTransfer])
	assert.Equal(t, 0, counts[KindPurchase])
	assert.Len(t, counts, 5)
	assert.Equal(t, 3, r.Total())
}

func TestJobRequest_JSON(t *testing.T) {
	var req JobRequest
	require.NoError(t, json.Unmarshal([]byte(`{"jobId":"j","directory":"/d","files":["a.csv"]}`), &req))
	assert.Equal(t, JobRequest{JobID: "j", Directory: "/d", Files: []string{"a.csv"}}, req)
}

func TestRulesConfig_Keywords(t *testing.T) {
	rules := &RulesConfig{Categories: []CategoryConfig{
		{Name: CategoryDividend, Keywords: []string{"Dividend"}},
	}}
	assert.Equal(t, []string{"Dividend"}, rules.Keywords(CategoryDividend))
	assert.Nil(t, rules.Keywords(CategoryFee))
}

func TestDefaultColumnLayout(t *testing.T) {
	layout := DefaultColumnLayout()
	assert.Equal(t, 0, layout.Date)
	assert.Equal(t, 3, layout.CompanySymbol)
	assert.Equal(t, []int{9, 10, 5}, layout.AmountFallback)
}
