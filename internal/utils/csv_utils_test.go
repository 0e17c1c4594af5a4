package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/EquilibriumGo/pkg/chart"
	"github.com/dyike/EquilibriumGo/pkg/models"
)

func TestReadPointsWithHeader(t *testing.T) {
	in := "price,quantity\n1,10\n2, 5\n\n# comment\n4,2.5\n"
	points, err := ReadPoints(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, models.Points{{Price: 1, Quantity: 10}, {Price: 2, Quantity: 5}, {Price: 4, Quantity: 2.5}}, points)
}

func TestReadPointsWithoutHeader(t *testing.T) {
	points, err := ReadPoints(strings.NewReader("1,1\n2,2\n"))
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestReadPointsErrors(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"header only":  "price,quantity\n",
		"one column":   "1\n",
		"bad quantity": "1,abc\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadPoints(strings.NewReader(in))
			assert.Error(t, err)
		})
	}

	_, err := ReadPoints(strings.NewReader("1,1\n2,x\n"))
	assert.ErrorIs(t, err, models.ErrInvalidPoint)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadPointsCSVMissingFile(t *testing.T) {
	_, err := ReadPointsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteSamples(t *testing.T) {
	var buf bytes.Buffer
	samples := []chart.Sample{
		{Price: 1, Supply: 1, Demand: 10, SupplyOK: true, DemandOK: true},
		{Price: 2, Supply: 2, SupplyOK: true},
	}
	require.NoError(t, WriteSamples(&buf, samples))
	assert.Equal(t,
		"price,supply_quantity,demand_quantity\n1.0000,1.0000,10.0000\n2.0000,2.0000,\n",
		buf.String())
}

func TestWriteSamplesToCSVGeneratedPath(t *testing.T) {
	base := t.TempDir()
	mgr := NewCSVManager(base)

	path, err := mgr.WriteSamplesToCSV("", []chart.Sample{{Price: 1, SupplyOK: true}})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "csv"), filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "market_samples_1_records_"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "price,"))
}

func TestSamplesPath(t *testing.T) {
	mgr := NewCSVManager("/data")
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("/data", "csv", "market_samples_3_records_20240102_030405.csv"), mgr.SamplesPath(3, at))
}
