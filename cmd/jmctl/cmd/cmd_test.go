package cmd

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bankCSV = `date,description,reference,amount,type
2024-03-01,Transfer Budi,TRF1,"1,500,000",credit
2024-03-05,Biaya admin,ADM,250000,debit
`

const systemCSV = `id,date,description,reference,amount,type
sys-1,2024-03-02,Paket 10 jam Budi,INV-1,1500000,credit
sys-2,2024-03-20,Sewa ruang,RENT,99000,debit
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestReconcile(t *testing.T) {
	bank := writeTemp(t, "bank.csv", bankCSV)
	system := writeTemp(t, "system.csv", systemCSV)

	out, summary, err := run(t, "reconcile", "--bank", bank, "--system", system)
	require.NoError(t, err)
	assert.Contains(t, summary, "1 matched, 2 unmatched")

	rows := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	require.Len(t, rows, 4)
	assert.True(t, strings.HasPrefix(rows[1], `"matched","0.00","2024-03-01","TRF1","1500000.00","2024-03-02","INV-1"`), rows[1])
	assert.True(t, strings.HasPrefix(rows[2], `"unmatched","250000.00","2024-03-05","ADM"`), rows[2])

	_, summary, err = run(t, "reconcile", "--bank", bank, "--system", system, "--window", "0")
	require.NoError(t, err)
	assert.Contains(t, summary, "0 matched, 4 unmatched")
}

func TestReconcile_WritesOutputFile(t *testing.T) {
	bank := writeTemp(t, "bank.csv", bankCSV)
	system := writeTemp(t, "system.csv", systemCSV)
	result := filepath.Join(t.TempDir(), "result.csv")

	out, _, err := run(t, "reconcile", "--bank", bank, "--system", system, "-o", result)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(result)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\r\n"))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.csv")
	require.NoError(t, writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "a,b\r\n")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n", string(data))

	failed := errors.New("disk full")
	err = writeFile(filepath.Join(dir, "partial.csv"), func(io.Writer) error { return failed })
	assert.ErrorIs(t, err, failed)

	err = writeFile(filepath.Join(dir, "missing", "out.csv"), func(io.Writer) error { return nil })
	assert.Error(t, err)
}

func TestReconcile_RejectsBadInput(t *testing.T) {
	bank := writeTemp(t, "bank.csv", "date,amount,type\n2024-03-01,-5,credit\n")
	system := writeTemp(t, "system.csv", systemCSV)

	_, _, err := run(t, "reconcile", "--bank", bank, "--system", system)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be positive")

	_, _, err = run(t, "reconcile", "--bank", bank)
	assert.Error(t, err, "--system is required")
}

func TestChart(t *testing.T) {
	out, _, err := run(t, "chart", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"1-1100"`)
	assert.Contains(t, out, `"ASSET"`)

	good := writeTemp(t, "chart.yaml", "assets:\n  - code: 1-1100\n    name: Kas\nincome:\n  - code: 4-1000\n    name: Pendapatan Kursus\n")
	out, _, err = run(t, "chart", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "2 accounts OK")

	dup := writeTemp(t, "dup.yaml", "assets:\n  - code: 1-1100\n    name: Kas\n  - code: 1-1100\n    name: Bank\n")
	_, _, err = run(t, "chart", "validate", dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate account code 1-1100")
}

func TestPPN(t *testing.T) {
	out, _, err := run(t, "ppn", "1,000,000")
	require.NoError(t, err)
	assert.Equal(t, "base  1000000\nppn   110000 (11%)\ntotal 1110000\n", out)

	out, _, err = run(t, "ppn", "1000", "--rate", "0.12")
	require.NoError(t, err)
	assert.Contains(t, out, "ppn   120 (12%)")

	_, _, err = run(t, "ppn", "abc")
	assert.Error(t, err)
}
