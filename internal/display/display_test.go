package display

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dyike/EquilibriumGo/config"
	"github.com/dyike/EquilibriumGo/pkg/app"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

func analyze(t *testing.T) *app.Analysis {
	t.Helper()
	e, err := app.BuildEngine(*config.DefaultConfigWithRoot(t.TempDir()))
	require.NoError(t, err)
	a, err := e.Analyze(models.Points{{Price: 1, Quantity: 1}, {Price: 2, Quantity: 2}, {Price: 3, Quantity: 3}}, models.Points{{Price: 1, Quantity: 10}, {Price: 2, Quantity: 5}, {Price: 4, Quantity: 2.5}})
	require.NoError(t, err)
	return a
}

func TestDisplayAnalysisResults(t *testing.T) {
	var buf bytes.Buffer
	NewResultsDisplay(&buf).DisplayAnalysisResults(analyze(t))

	out := buf.String()
	assert.Contains(t, out, "Supply Curve: Qs = ")
	assert.Contains(t, out, "Demand Curve: Qd = ")
	assert.Contains(t, out, "Equilibrium Price = 3.16, Equilibrium Quantity = 3.16\n")
}

func TestDisplayNoEquilibrium(t *testing.T) {
	a := analyze(t)
	a.Equilibrium = nil
	var buf bytes.Buffer
	NewResultsDisplay(&buf).DisplayEquilibrium(a)
	assert.Equal(t, "No equilibrium found in the searched price range\n", buf.String())
}

func TestDisplayQuote(t *testing.T) {
	q, err := analyze(t).Query(2)
	require.NoError(t, err)
	var buf bytes.Buffer
	NewResultsDisplay(&buf).DisplayQuote(q)
	assert.Equal(t, "At price 2, Quantity Supplied: 2.00, Quantity Demanded: 5.00\n", buf.String())
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "[(1, 10), (2.5, 4)]", FormatPoints(models.Points{{Price: 1, Quantity: 10}, {Price: 2.5, Quantity: 4}}))
	assert.Equal(t, "[]", FormatPoints(nil))
}

func TestMarkdown(t *testing.T) {
	a := analyze(t)
	q, err := a.Query(2)
	require.NoError(t, err)

	md := Markdown(app.NewReport(a, []app.Quote{q}))
	assert.Contains(t, md, "# Market Equilibrium Report")
	assert.Contains(t, md, "- Price: **3.16**")
	assert.Contains(t, md, "| 2 | 2.00 | 5.00 |")
}

func TestWriteReport(t *testing.T) {
	a := analyze(t)
	r := app.NewReport(a, nil)
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "report.yaml")
	require.NoError(t, WriteReport(yamlPath, r))
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "equilibrium")

	mdPath := filepath.Join(dir, "sub", "report.md")
	require.NoError(t, WriteReport(mdPath, r))
	_, err = os.Stat(mdPath)
	assert.NoError(t, err)

	assert.Error(t, WriteReport(filepath.Join(dir, "report.txt"), r))
}
