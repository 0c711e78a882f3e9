package dto

import (
	"time"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one line of a journal to post. Exactly one of Debit or Credit must be positive.
type JournalLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Notes     string          `json:"notes"`
}

// PostEntryRequest defines the data needed to post a journal entry.
type PostEntryRequest struct {
	Date        time.Time            `json:"date" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Lines       []JournalLineRequest `json:"lines" binding:"dive"`
	IncludePPN  bool                 `json:"includePPN"` // append a balanced PPN pair for INCOME credits
}

// ListJournalsParams holds parameters for listing journals.
type ListJournalsParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To        *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Limit     int        `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken *string    `form:"nextToken"`
}

// ListLinesParams holds parameters for listing an account's lines.
type ListLinesParams struct {
	From   *time.Time `form:"from" time_format:"2006-01-02" time_utc:"1"`
	To     *time.Time `form:"to" time_format:"2006-01-02" time_utc:"1"`
	Format string     `form:"format"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID         string          `json:"lineID"`
	JournalID      string          `json:"journalID"`
	LineNo         int             `json:"lineNo"`
	AccountID      string          `json:"accountID"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Notes          string          `json:"notes,omitempty"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	JournalDate    *time.Time      `json:"journalDate,omitempty"`
	Description    string          `json:"description,omitempty"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID          string                `json:"journalID"`
	Date               time.Time             `json:"date"`
	Description        string                `json:"description"`
	Status             domain.JournalStatus  `json:"status"`
	Amount             decimal.Decimal       `json:"amount"`
	OriginalJournalID  *string               `json:"originalJournalID,omitempty"`
	ReversingJournalID *string               `json:"reversingJournalID,omitempty"`
	Lines              []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
}

// ListJournalsResponse wraps a page of journals.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ToJournalLineResponse converts a domain.JournalLine to its DTO.
func ToJournalLineResponse(line *domain.JournalLine) JournalLineResponse {
	resp := JournalLineResponse{
		LineID:         line.LineID,
		JournalID:      line.JournalID,
		LineNo:         line.LineNo,
		AccountID:      line.AccountID,
		Debit:          line.Debit,
		Credit:         line.Credit,
		Notes:          line.Notes,
		RunningBalance: line.RunningBalance,
		Description:    line.JournalDescription,
	}
	if !line.JournalDate.IsZero() {
		date := line.JournalDate
		resp.JournalDate = &date
	}
	return resp
}

// ToJournalLineResponses converts a slice of lines.
func ToJournalLineResponses(lines []domain.JournalLine) []JournalLineResponse {
	responses := make([]JournalLineResponse, len(lines))
	for i := range lines {
		responses[i] = ToJournalLineResponse(&lines[i])
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		Date:               j.JournalDate,
		Description:        j.Description,
		Status:             j.Status,
		Amount:             j.Amount,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Lines) > 0 {
		resp.Lines = ToJournalLineResponses(j.Lines)
	}
	return resp
}
