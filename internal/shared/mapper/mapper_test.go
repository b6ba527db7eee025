package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postforge/postforge/internal/domain/subscription"
	"github.com/postforge/postforge/internal/domain/usage"
)

type invoiceView struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
}

var invoiceViews = New(func(inv subscription.Invoice) invoiceView {
	return invoiceView{ID: inv.ExternalInvoiceID, Amount: inv.Amount}
})

func TestMapper_ToDTOList(t *testing.T) {
	paidAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first, err := subscription.NewPaidInvoice("inv_1", 49900, "INR", paidAt)
	require.NoError(t, err)
	second, err := subscription.NewPaidInvoice("inv_2", 149900, "INR", paidAt.AddDate(0, 1, 0))
	require.NoError(t, err)

	tests := []struct {
		name  string
		input []subscription.Invoice
		want  []invoiceView
		json  string
	}{
		{"nil encodes as empty list", nil, []invoiceView{}, `[]`},
		{"empty", []subscription.Invoice{}, []invoiceView{}, `[]`},
		{
			"keeps order",
			[]subscription.Invoice{first, second},
			[]invoiceView{{"inv_1", 49900}, {"inv_2", 149900}},
			`[{"id":"inv_1","amount":49900},{"id":"inv_2","amount":149900}]`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := invoiceViews.ToDTOList(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)

			raw, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(raw))
		})
	}
}

func TestMapper_ToDTOWithPointerEntities(t *testing.T) {
	periods := New(func(r *usage.Record) string { return r.Period().String() })

	rec, err := usage.ReconstructRecord(1, 9, usage.BillingPeriod{Year: 2024, Month: time.May}, 2, 1, 300, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "2024-05", periods.ToDTO(rec))
	assert.Equal(t, []string{"2024-05"}, periods.ToDTOList([]*usage.Record{rec}))
}
