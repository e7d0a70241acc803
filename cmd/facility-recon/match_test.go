package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facility-recon/internal/fileio"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	master := writeFile(t, dir, "master.csv", "HF Name,District\nFreetown Clinic,Western\nMakeni Helath Post,Bombali\nZebra Unrelated Name,X\n")
	reference := writeFile(t, dir, "reference.csv", "Facility\nFreetown Clinic\nMakeni Health Post\n")
	report := filepath.Join(dir, "out", "report.xlsx")
	require.NoError(t, os.MkdirAll(filepath.Dir(report), 0o755))

	out, err := execute(t, "match", master, reference, "--out", report, "-q", "--history-db", filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "Reconciliation summary")
	assert.Contains(t, out, "report written to")

	f, err := os.Open(report)
	require.NoError(t, err)
	defer f.Close()
	tb, err := fileio.ReadTable(f, report, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, tb.Len())

	out, err = execute(t, "runs", "--history-db", filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	assert.Contains(t, out, "master.csv -> reference.csv")
}

func TestMatchCommandErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	master := writeFile(t, dir, "m.csv", "name\nA\n")

	_, err := execute(t, "match", master, filepath.Join(dir, "missing.csv"), "-q")
	assert.ErrorContains(t, err, "reference")

	_, err = execute(t, "match", master, master, "--out", "report.pdf", "-q")
	assert.ErrorContains(t, err, ".csv or .xlsx")

	_, err = execute(t, "match", master, master, "--scorer", "soundex", "-q")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "facility-recon dev\n", out)
}
