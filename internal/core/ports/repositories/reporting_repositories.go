package repositories

import (
	"context"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetAccountActivity sums debit and credit per account over journals dated within [from, to].
	GetAccountActivity(ctx context.Context, from, to time.Time) ([]domain.AccountActivity, error)
}
