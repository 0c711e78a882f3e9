// Package seed loads a chart of accounts from YAML and applies it idempotently.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"gopkg.in/yaml.v3"
)

//go:embed default_chart.yaml
var defaultChart []byte

// ChartAccount is one account in the YAML file.
type ChartAccount struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Chart groups accounts by type, in the order they appear in the file.
type Chart struct {
	Assets      []ChartAccount `yaml:"assets"`
	Liabilities []ChartAccount `yaml:"liabilities"`
	Equity      []ChartAccount `yaml:"equity"`
	Income      []ChartAccount `yaml:"income"`
	Expenses    []ChartAccount `yaml:"expenses"`
}

// Entry is a chart account with its type resolved.
type Entry struct {
	ChartAccount
	AccountType domain.AccountType
}

// AccountEnsurer creates an account unless one with the code exists.
type AccountEnsurer interface {
	EnsureAccount(ctx context.Context, code, name string, accountType domain.AccountType, userID string) (*domain.Account, error)
}

// LoadChart reads a chart from path.
func LoadChart(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart file: %w", err)
	}
	return ParseChart(data)
}

// DefaultChart returns the chart bundled with the binary.
func DefaultChart() *Chart {
	chart, err := ParseChart(defaultChart)
	if err != nil {
		panic(fmt.Sprintf("embedded chart is invalid: %v", err))
	}
	return chart
}

// ParseChart decodes and validates YAML chart data.
func ParseChart(data []byte) (*Chart, error) {
	var chart Chart
	if err := yaml.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if _, err := chart.Entries(); err != nil {
		return nil, err
	}
	return &chart, nil
}

// Entries flattens the chart and checks that codes are unique and names present.
func (c *Chart) Entries() ([]Entry, error) {
	groups := []struct {
		accountType domain.AccountType
		accounts    []ChartAccount
	}{
		{domain.Asset, c.Assets},
		{domain.Liability, c.Liabilities},
		{domain.Equity, c.Equity},
		{domain.Income, c.Income},
		{domain.Expense, c.Expenses},
	}

	seen := make(map[string]struct{})
	var entries []Entry
	for _, g := range groups {
		for _, acc := range g.accounts {
			acc.Code = strings.TrimSpace(acc.Code)
			acc.Name = strings.TrimSpace(acc.Name)
			if acc.Code == "" {
				return nil, fmt.Errorf("%s account %q has no code", g.accountType, acc.Name)
			}
			if acc.Name == "" {
				return nil, fmt.Errorf("account %s has no name", acc.Code)
			}
			if _, dup := seen[acc.Code]; dup {
				return nil, fmt.Errorf("duplicate account code %s", acc.Code)
			}
			seen[acc.Code] = struct{}{}
			entries = append(entries, Entry{ChartAccount: acc, AccountType: g.accountType})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("chart has no accounts")
	}
	return entries, nil
}

// Apply ensures every chart account exists. Existing accounts are left untouched.
func Apply(ctx context.Context, svc AccountEnsurer, chart *Chart, userID string) (int, error) {
	entries, err := chart.Entries()
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if _, err := svc.EnsureAccount(ctx, e.Code, e.Name, e.AccountType, userID); err != nil {
			return 0, fmt.Errorf("seed account %s: %w", e.Code, err)
		}
	}
	return len(entries), nil
}
