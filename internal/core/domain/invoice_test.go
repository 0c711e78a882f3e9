package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

func TestInvoice_EffectiveStatus(t *testing.T) {
	due := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status domain.InvoiceStatus
		now    time.Time
		want   domain.InvoiceStatus
	}{
		{"before due date", domain.InvoicePending, time.Date(2024, time.March, 19, 23, 0, 0, 0, time.UTC), domain.InvoicePending},
		{"morning of due date", domain.InvoicePending, time.Date(2024, time.March, 20, 9, 0, 0, 0, time.UTC), domain.InvoicePending},
		{"last second of due date", domain.InvoicePending, time.Date(2024, time.March, 20, 23, 59, 59, 0, time.UTC), domain.InvoicePending},
		{"day after due date", domain.InvoicePending, time.Date(2024, time.March, 21, 0, 0, 0, 0, time.UTC), domain.InvoiceOverdue},
		{"paid stays paid", domain.InvoicePaid, paidAt, domain.InvoicePaid},
		{"cancelled stays cancelled", domain.InvoiceCancelled, paidAt, domain.InvoiceCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := domain.Invoice{DueDate: due, Status: tt.status}
			assert.Equal(t, tt.want, inv.EffectiveStatus(tt.now))
		})
	}
}
