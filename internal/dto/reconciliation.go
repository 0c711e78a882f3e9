package dto

import (
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BankLineRequest is one bank statement row in a request body.
type BankLineRequest struct {
	LineID      string           `json:"lineID"`
	Date        time.Time        `json:"date" binding:"required"`
	Description string           `json:"description"`
	Reference   string           `json:"reference"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        domain.Direction `json:"type" binding:"required,oneof=debit credit"`
}

// SystemRecordRequest is one system record in a request body.
type SystemRecordRequest struct {
	RecordID    string           `json:"recordID"`
	Date        time.Time        `json:"date" binding:"required"`
	Description string           `json:"description"`
	Reference   string           `json:"reference"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        domain.Direction `json:"type" binding:"required,oneof=debit credit"`
}

// AutoMatchRequest matches the supplied sets without touching storage.
type AutoMatchRequest struct {
	BankLines     []BankLineRequest     `json:"bankLines" binding:"dive"`
	SystemRecords []SystemRecordRequest `json:"systemRecords" binding:"dive"`
}

// ImportBankLinesRequest stores bank statement lines for a ledger bank account.
type ImportBankLinesRequest struct {
	AccountID string            `json:"accountID" binding:"required"`
	Lines     []BankLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ReconcileRequest runs the matcher against stored bank lines and the ledger.
type ReconcileRequest struct {
	AccountID string    `json:"accountID" binding:"required"`
	From      time.Time `json:"from" binding:"required"`
	To        time.Time `json:"to" binding:"required"`
}

// MatchResultResponse is one row of a matcher outcome.
type MatchResultResponse struct {
	BankLine     *domain.BankStatementLine `json:"bankLine,omitempty"`
	SystemRecord *domain.SystemRecord      `json:"systemRecord,omitempty"`
	Status       domain.MatchStatus        `json:"status"`
	Difference   decimal.Decimal           `json:"difference"`
}

// AutoMatchResponse wraps matcher results with counts.
type AutoMatchResponse struct {
	Results        []MatchResultResponse `json:"results"`
	MatchedCount   int                   `json:"matchedCount"`
	UnmatchedCount int                   `json:"unmatchedCount"`
}

// ReconciliationRunResponse is a persisted run with its records.
type ReconciliationRunResponse struct {
	Run     domain.ReconciliationRun      `json:"run"`
	Records []domain.ReconciliationRecord `json:"records"`
}

func (r BankLineRequest) ToDomain() domain.BankStatementLine {
	return domain.BankStatementLine{
		LineID:      r.LineID,
		Date:        r.Date,
		Description: r.Description,
		Reference:   r.Reference,
		Amount:      r.Amount,
		Type:        r.Type,
	}
}

func (r SystemRecordRequest) ToDomain() domain.SystemRecord {
	return domain.SystemRecord{
		RecordID:    r.RecordID,
		Date:        r.Date,
		Description: r.Description,
		Reference:   r.Reference,
		Amount:      r.Amount,
		Type:        r.Type,
	}
}

// ToBankLines converts request rows to domain lines, keeping input order.
func ToBankLines(reqs []BankLineRequest) []domain.BankStatementLine {
	lines := make([]domain.BankStatementLine, len(reqs))
	for i, r := range reqs {
		lines[i] = r.ToDomain()
	}
	return lines
}

// ToSystemRecords converts request rows to domain records, keeping input order.
func ToSystemRecords(reqs []SystemRecordRequest) []domain.SystemRecord {
	records := make([]domain.SystemRecord, len(reqs))
	for i, r := range reqs {
		records[i] = r.ToDomain()
	}
	return records
}

// ToAutoMatchResponse converts matcher output and counts statuses.
func ToAutoMatchResponse(results []domain.MatchResult) AutoMatchResponse {
	resp := AutoMatchResponse{Results: make([]MatchResultResponse, len(results))}
	for i, r := range results {
		resp.Results[i] = MatchResultResponse(r)
		if r.Status == domain.StatusMatched {
			resp.MatchedCount++
		} else {
			resp.UnmatchedCount++
		}
	}
	return resp
}
