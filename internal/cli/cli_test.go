package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"facility-recon/internal/reconcile/model"
	"facility-recon/internal/storage"
)

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(model.Summary{TotalMaster: 4, TotalReference: 3, Exact: 2, High: 1, Low: 1, Threshold: 70}, "ratio")
	for _, want := range []string{"Reconciliation summary", "Total master records", "Exact Match", "High Match", "Low Match", "ratio", "70.00"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderRuns(t *testing.T) {
	assert.Contains(t, RenderRuns(nil), "no runs recorded")

	out := RenderRuns([]storage.Run{{
		ID:              "0f8c2a1e-aaaa-bbbb-cccc-000000000000",
		CreatedAt:       time.Now(),
		MasterSource:    "master.xlsx",
		ReferenceSource: "dhis2.csv",
		Scorer:          "ratio",
		Threshold:       70,
		Summary:         model.Summary{TotalMaster: 4, Exact: 2, High: 1, Low: 1},
	}})
	assert.Contains(t, out, "0f8c2a1e")
	assert.NotContains(t, out, "aaaa")
	assert.Contains(t, out, "master.xlsx -> dhis2.csv")
	assert.Contains(t, out, "exact 2  high 1  low 1  of 4")
}

func TestNewProgress(t *testing.T) {
	assert.Nil(t, NewProgress(&bytes.Buffer{}, 0))

	var buf bytes.Buffer
	p := NewProgress(&buf, 3)
	for i := 1; i <= 3; i++ {
		p(i, 3)
	}
	assert.Contains(t, buf.String(), "3/3")
}
