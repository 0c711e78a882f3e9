package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEnsurer struct {
	mock.Mock
}

func (m *mockEnsurer) EnsureAccount(ctx context.Context, code, name string, accountType domain.AccountType, userID string) (*domain.Account, error) {
	args := m.Called(ctx, code, name, accountType, userID)
	if acc, ok := args.Get(0).(*domain.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	entries, err := chart.Entries()
	require.NoError(t, err)

	byCode := map[string]Entry{}
	for _, e := range entries {
		byCode[e.Code] = e
	}
	assert.Equal(t, domain.Liability, byCode["2-1200"].AccountType)
	assert.Equal(t, "PPN Keluaran", byCode["2-1200"].Name)
	assert.Equal(t, domain.Equity, byCode["3-9000"].AccountType)
	assert.Equal(t, domain.Income, byCode["4-1000"].AccountType)
}

func TestParseChart_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "assets: [code: "},
		{"empty", "assets: []\n"},
		{"missing code", "assets:\n  - name: Kas\n"},
		{"missing name", "assets:\n  - code: \"1\"\n"},
		{"duplicate code", "assets:\n  - code: \"1\"\n    name: Kas\nexpenses:\n  - code: \"1\"\n    name: Sewa\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChart([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("income:\n  - code: \"4-9\"\n    name: Lain-lain\n"), 0o600))

	chart, err := LoadChart(path)
	require.NoError(t, err)
	require.Len(t, chart.Income, 1)

	_, err = LoadChart(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	chart, err := ParseChart([]byte("assets:\n  - code: \"1-1\"\n    name: Kas\nincome:\n  - code: \"4-1\"\n    name: Kursus\n"))
	require.NoError(t, err)

	svc := new(mockEnsurer)
	svc.On("EnsureAccount", mock.Anything, "1-1", "Kas", domain.Asset, "seeder").Return(&domain.Account{}, nil).Once()
	svc.On("EnsureAccount", mock.Anything, "4-1", "Kursus", domain.Income, "seeder").Return(&domain.Account{}, nil).Once()

	n, err := Apply(context.Background(), svc, chart, "seeder")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	svc.AssertExpectations(t)
}

func TestApply_StopsOnError(t *testing.T) {
	chart, err := ParseChart([]byte("assets:\n  - code: \"1-1\"\n    name: Kas\n  - code: \"1-2\"\n    name: Bank\n"))
	require.NoError(t, err)

	svc := new(mockEnsurer)
	svc.On("EnsureAccount", mock.Anything, "1-1", "Kas", domain.Asset, "seeder").Return(nil, errors.New("db down")).Once()

	_, err = Apply(context.Background(), svc, chart, "seeder")
	assert.ErrorContains(t, err, "1-1")
	svc.AssertNotCalled(t, "EnsureAccount", mock.Anything, "1-2", "Bank", domain.Asset, "seeder")
}
