package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/jakartamandarin/jm_finance/internal/apperrors"
	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MatchConfig tunes AutoMatch.
type MatchConfig struct {
	DateWindowDays int             // |bank date - system date| allowed, in calendar days
	AmountEpsilon  decimal.Decimal // |bank amount - system amount| allowed for a match
	StrictTieBreak bool            // fail with ErrAmbiguousMatch instead of falling back to input order
}

// DefaultMatchConfig matches exact amounts within three days.
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{DateWindowDays: 3, AmountEpsilon: decimal.Zero}
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayDistance(a, b time.Time) int {
	days := int(dayOf(a).Sub(dayOf(b)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// orderByDate returns indexes of dates sorted by day, keeping input order for equal days.
func orderByDate(n int, dateAt func(int) time.Time) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return dayOf(dateAt(idx[a])).Before(dayOf(dateAt(idx[b])))
	})
	return idx
}

// AutoMatch reconciles bank lines against system records.
//
// Bank lines are visited by date, then input order. Each takes the first available
// system record of the same direction inside the date window whose amount is within
// epsilon, preferring an exact amount on the same day, then the earliest record. Lines
// left over are paired with the closest-amount record inside the window and reported
// unmatched with the difference. Anything still alone is reported unmatched with its
// own amount as the difference.
func AutoMatch(bankLines []domain.BankStatementLine, systemRecords []domain.SystemRecord, cfg MatchConfig) ([]domain.MatchResult, error) {
	if err := validateMatchInput(bankLines, systemRecords, cfg); err != nil {
		return nil, err
	}

	bankOrder := orderByDate(len(bankLines), func(i int) time.Time { return bankLines[i].Date })
	sysOrder := orderByDate(len(systemRecords), func(i int) time.Time { return systemRecords[i].Date })

	sysUsed := make([]bool, len(systemRecords))
	pairedWith := make([]int, len(bankLines))
	for i := range pairedWith {
		pairedWith[i] = -1
	}

	inWindow := func(b *domain.BankStatementLine, s *domain.SystemRecord) bool {
		return b.Type == s.Type && dayDistance(b.Date, s.Date) <= cfg.DateWindowDays
	}

	// Phase 1: matches within tolerance.
	for _, bi := range bankOrder {
		b := &bankLines[bi]
		best, bestRank, tied := -1, 2, false
		for _, si := range sysOrder {
			if sysUsed[si] {
				continue
			}
			s := &systemRecords[si]
			if !inWindow(b, s) || b.Amount.Sub(s.Amount).Abs().GreaterThan(cfg.AmountEpsilon) {
				continue
			}
			rank := 1
			if b.Amount.Equal(s.Amount) && dayOf(b.Date).Equal(dayOf(s.Date)) {
				rank = 0
			}
			switch {
			case rank < bestRank:
				best, bestRank, tied = si, rank, false
			case rank == bestRank && dayOf(s.Date).Equal(dayOf(systemRecords[best].Date)):
				// Same rank and same day: only input order separates them.
				tied = true
			}
		}
		if best < 0 {
			continue
		}
		if tied && cfg.StrictTieBreak {
			return nil, fmt.Errorf("%w: bank line %s (%s %s on %s) has several equally ranked candidates",
				apperrors.ErrAmbiguousMatch, b.LineID, b.Type, b.Amount, b.Date.Format("2006-01-02"))
		}
		sysUsed[best] = true
		pairedWith[bi] = best
	}

	// Phase 2: pair leftovers by closest amount so the difference is reported.
	for _, bi := range bankOrder {
		if pairedWith[bi] >= 0 {
			continue
		}
		b := &bankLines[bi]
		best := -1
		var bestDiff decimal.Decimal
		for _, si := range sysOrder {
			if sysUsed[si] || !inWindow(b, &systemRecords[si]) {
				continue
			}
			diff := b.Amount.Sub(systemRecords[si].Amount).Abs()
			if best < 0 || diff.LessThan(bestDiff) {
				best, bestDiff = si, diff
			}
		}
		if best >= 0 {
			sysUsed[best] = true
			pairedWith[bi] = best
		}
	}

	results := make([]domain.MatchResult, 0, len(bankLines)+len(systemRecords))
	for _, bi := range bankOrder {
		b := bankLines[bi]
		if si := pairedWith[bi]; si >= 0 {
			s := systemRecords[si]
			diff := b.Amount.Sub(s.Amount)
			status := domain.StatusUnmatched
			if diff.Abs().LessThanOrEqual(cfg.AmountEpsilon) {
				status = domain.StatusMatched
			}
			results = append(results, domain.MatchResult{BankLine: &b, SystemRecord: &s, Status: status, Difference: diff})
			continue
		}
		results = append(results, domain.MatchResult{BankLine: &b, Status: domain.StatusUnmatched, Difference: b.Amount})
	}
	for _, si := range sysOrder {
		if sysUsed[si] {
			continue
		}
		s := systemRecords[si]
		results = append(results, domain.MatchResult{SystemRecord: &s, Status: domain.StatusUnmatched, Difference: s.Amount})
	}
	return results, nil
}

func validateMatchInput(bankLines []domain.BankStatementLine, systemRecords []domain.SystemRecord, cfg MatchConfig) error {
	if cfg.DateWindowDays < 0 || cfg.AmountEpsilon.IsNegative() {
		return fmt.Errorf("%w: date window and amount epsilon must not be negative", apperrors.ErrValidation)
	}
	for i, b := range bankLines {
		if !b.Type.Valid() {
			return fmt.Errorf("%w: bank line %d has type %q, want debit or credit", apperrors.ErrValidation, i+1, b.Type)
		}
		if b.Amount.IsNegative() {
			return fmt.Errorf("%w: bank line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
	}
	for i, s := range systemRecords {
		if !s.Type.Valid() {
			return fmt.Errorf("%w: system record %d has type %q, want debit or credit", apperrors.ErrValidation, i+1, s.Type)
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: system record %d has a negative amount", apperrors.ErrValidation, i+1)
		}
	}
	return nil
}
